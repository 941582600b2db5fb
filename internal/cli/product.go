package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"inventory/internal/domain"
	"inventory/internal/usecase"
)

var (
	productSKU      string
	productName     string
	productPrice    int64
	productQuantity int64
	productJSON     bool
	productPage     int
	productPageSize int
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Create, update and list products",
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new product",
	Long: `Add a new product to the catalog.

Examples:
  inventory product add --sku MUG-1 --name "Blue mug" --quantity 12 --price 1299`,
	RunE: runProductAdd,
}

var productUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update name, price or quantity of a product",
	Long: `Update an existing product. Only the flags given are changed.

Examples:
  inventory product update --sku MUG-1 --price 1099
  inventory product update --sku MUG-1 --name "Blue coffee mug" --quantity 8`,
	RunE: runProductUpdate,
}

var productStockCmd = &cobra.Command{
	Use:   "stock <sku> <quantity>",
	Short: "Set the stock level of a product",
	Args:  cobra.ExactArgs(2),
	RunE:  runProductStock,
}

var productGetCmd = &cobra.Command{
	Use:   "get <sku>",
	Short: "Show a single product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductGet,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `List products ordered by SKU, optionally filtered.

Examples:
  inventory product list --name mug
  inventory product list --sku "MUG-*" --page 2 --page-size 20
  inventory product list --quantity 0 --json`,
	RunE: runProductList,
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productAddCmd, productUpdateCmd, productStockCmd, productGetCmd, productListCmd)

	productAddCmd.Flags().StringVar(&productSKU, "sku", "", "product SKU (required)")
	productAddCmd.Flags().StringVar(&productName, "name", "", "product name (required)")
	productAddCmd.Flags().Int64Var(&productPrice, "price", 0, "price in the smallest currency unit")
	productAddCmd.Flags().Int64Var(&productQuantity, "quantity", 0, "units in stock")
	productAddCmd.MarkFlagRequired("sku")
	productAddCmd.MarkFlagRequired("name")

	productUpdateCmd.Flags().StringVar(&productSKU, "sku", "", "product SKU (required)")
	productUpdateCmd.Flags().StringVar(&productName, "name", "", "new name")
	productUpdateCmd.Flags().Int64Var(&productPrice, "price", 0, "new price")
	productUpdateCmd.Flags().Int64Var(&productQuantity, "quantity", 0, "new quantity")
	productUpdateCmd.MarkFlagRequired("sku")

	productGetCmd.Flags().BoolVar(&productJSON, "json", false, "output as JSON")

	productListCmd.Flags().StringVar(&productName, "name", "", "name contains (case-insensitive)")
	productListCmd.Flags().StringVar(&productSKU, "sku", "", "SKU contains, or glob pattern")
	productListCmd.Flags().Int64Var(&productPrice, "price", 0, "exact price")
	productListCmd.Flags().Int64Var(&productQuantity, "quantity", 0, "exact quantity")
	productListCmd.Flags().IntVar(&productPage, "page", 1, "page number")
	productListCmd.Flags().IntVar(&productPageSize, "page-size", usecase.DefaultPageSize, "products per page")
	productListCmd.Flags().BoolVar(&productJSON, "json", false, "output as JSON")
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.catalog.CreateProduct(cmd.Context(), domain.Product{
		SKU:      productSKU,
		Name:     productName,
		Price:    productPrice,
		Quantity: productQuantity,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %s\n", formatProduct(p))
	return nil
}

func runProductUpdate(cmd *cobra.Command, args []string) error {
	var patch usecase.ProductPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &productName
	}
	if cmd.Flags().Changed("price") {
		patch.Price = &productPrice
	}
	if cmd.Flags().Changed("quantity") {
		patch.Quantity = &productQuantity
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.catalog.UpdateProduct(cmd.Context(), productSKU, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", formatProduct(p))
	return nil
}

func runProductStock(cmd *cobra.Command, args []string) error {
	var qty int64
	if _, err := fmt.Sscan(args[1], &qty); err != nil {
		return fmt.Errorf("invalid quantity %q: %w", args[1], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.catalog.SetQuantity(cmd.Context(), args[0], qty)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", formatProduct(p))
	return nil
}

func runProductGet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.catalog.GetProduct(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if productJSON {
		output, _ := json.MarshalIndent(p, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	fmt.Println(formatProduct(p))
	return nil
}

func runProductList(cmd *cobra.Command, args []string) error {
	filter := domain.ProductFilter{
		Name:     productName,
		SKU:      productSKU,
		Page:     productPage,
		PageSize: productPageSize,
	}
	if cmd.Flags().Changed("price") {
		filter.Price = &productPrice
	}
	if cmd.Flags().Changed("quantity") {
		filter.Quantity = &productQuantity
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.catalog.ListProducts(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if productJSON {
		output, _ := json.MarshalIndent(page, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	if len(page.Products) == 0 {
		fmt.Println("No products found.")
		return nil
	}
	fmt.Printf("Showing %d of %d products (page %d)\n\n", len(page.Products), page.Total, page.Page)
	for _, p := range page.Products {
		fmt.Println(formatProduct(p))
	}
	return nil
}

func formatProduct(p domain.Product) string {
	return fmt.Sprintf("%-16s %-32s qty=%-6d price=%-8d updated=%s",
		p.SKU, p.Name, p.Quantity, p.Price, p.UpdatedAt.Local().Format(time.DateTime))
}
