package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"inventory/internal/domain"
	"inventory/internal/logging"
	"inventory/internal/port"
)

var importColumns = []string{"sku", "name", "quantity", "price"}

// ImportUseCase loads products from CSV files through the catalog, so every
// imported change goes through the product write hook.
type ImportUseCase struct {
	catalog *CatalogUseCase
	walker  port.FileWalker
	logger  *zap.Logger
}

// NewImportUseCase creates a new import use case.
func NewImportUseCase(catalog *CatalogUseCase, walker port.FileWalker, logger *zap.Logger) *ImportUseCase {
	return &ImportUseCase{
		catalog: catalog,
		walker:  walker,
		logger:  logging.OrNop(logger),
	}
}

// Files lists the CSV files an import of root would read.
func (u *ImportUseCase) Files(root string) ([]port.FileInfo, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// Import reads every file and applies its rows. A file that cannot be read
// or lacks a required column is reported in the returned error while the
// remaining files are still imported.
func (u *ImportUseCase) Import(ctx context.Context, files []port.FileInfo, progress func(done, total int)) (domain.ImportSummary, error) {
	summary := domain.ImportSummary{
		Created:   []domain.Product{},
		Updated:   []domain.ImportChange{},
		Discarded: []map[string]string{},
	}

	var errs []error
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := u.importFile(ctx, file.Path, &summary); err != nil {
			u.logger.Warn("import file failed", zap.String("path", file.Path), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", file.Path, err))
		}
		if progress != nil {
			progress(i+1, len(files))
		}
	}

	u.logger.Info("import finished",
		zap.Int("files", len(files)),
		zap.Int("created", len(summary.Created)),
		zap.Int("updated", len(summary.Updated)),
		zap.Int("discarded", len(summary.Discarded)),
	)
	return summary, errors.Join(errs...)
}

func (u *ImportUseCase) importFile(ctx context.Context, path string, summary *domain.ImportSummary) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return u.ImportCSV(ctx, f, summary)
}

// ImportCSV applies the rows of one CSV document to the catalog.
func (u *ImportUseCase) ImportCSV(ctx context.Context, r io.Reader, summary *domain.ImportSummary) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range importColumns {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}

		row := make(map[string]string, len(importColumns))
		blank := true
		for _, name := range importColumns {
			if idx := columns[name]; idx < len(record) {
				row[name] = strings.TrimSpace(record[idx])
			} else {
				row[name] = ""
			}
			if row[name] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if err := u.applyRow(ctx, row, summary); err != nil {
			return err
		}
	}
}

func (u *ImportUseCase) applyRow(ctx context.Context, row map[string]string, summary *domain.ImportSummary) error {
	p, ok := parseRow(row)
	if !ok {
		summary.Discarded = append(summary.Discarded, row)
		return nil
	}

	existing, err := u.catalog.GetProduct(ctx, p.SKU)
	if errors.Is(err, domain.ErrProductNotFound) {
		created, err := u.catalog.CreateProduct(ctx, p)
		if err != nil {
			return err
		}
		summary.Created = append(summary.Created, created)
		return nil
	}
	if err != nil {
		return err
	}

	var changes []string
	if existing.Quantity != p.Quantity {
		changes = append(changes, fmt.Sprintf("Quantity From: %d >>> To: %d", existing.Quantity, p.Quantity))
	}
	if existing.Price != p.Price {
		changes = append(changes, fmt.Sprintf("Price From: %d >>> To: %d", existing.Price, p.Price))
	}
	if len(changes) == 0 {
		return nil
	}

	updated, err := u.catalog.UpdateProduct(ctx, p.SKU, ProductPatch{Quantity: &p.Quantity, Price: &p.Price})
	if err != nil {
		return err
	}
	summary.Updated = append(summary.Updated, domain.ImportChange{
		SKU:     updated.SKU,
		Name:    updated.Name,
		Changes: strings.Join(changes, "\n"),
	})
	return nil
}

// parseRow reports false for rows with a missing field, a non-integer
// number or a negative value.
func parseRow(row map[string]string) (domain.Product, bool) {
	for _, name := range importColumns {
		if row[name] == "" {
			return domain.Product{}, false
		}
	}
	qty, err := strconv.ParseInt(row["quantity"], 10, 64)
	if err != nil || qty < 0 {
		return domain.Product{}, false
	}
	price, err := strconv.ParseInt(row["price"], 10, 64)
	if err != nil || price < 0 {
		return domain.Product{}, false
	}
	return domain.Product{
		SKU:      row["sku"],
		Name:     row["name"],
		Quantity: qty,
		Price:    price,
	}, true
}
