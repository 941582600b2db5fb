package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("sku,name,quantity,price\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerMatchesPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.csv"))
	writeFile(t, filepath.Join(root, "nested", "b.csv"))
	writeFile(t, filepath.Join(root, "nested", "notes.txt"))
	writeFile(t, filepath.Join(root, ".inventory", "cache.csv"))

	w := NewWalker([]string{"**/*.csv"}, []string{"**/.inventory/**", ".inventory/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got = append(got, filepath.ToSlash(rel))
	}

	want := []string{"a.csv", "nested/b.csv"}
	if len(got) != len(want) {
		t.Fatalf("Walk() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Walk()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkerSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "stock.txt")
	writeFile(t, path)

	files, err := NewWalker(nil, nil).Walk(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != path {
		t.Errorf("Walk(file) = %v, want only %s", files, path)
	}
	if files[0].Size == 0 {
		t.Error("expected file size to be recorded")
	}
}

func TestWalkerMissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for missing root")
	}
}
