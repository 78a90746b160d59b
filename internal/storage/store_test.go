package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

func enrichedProduct(url, title string) models.EnrichedProduct {
	return models.EnrichedProduct{
		Product: models.Product{
			Title:     title,
			Price:     "$899.99",
			URL:       url,
			ScrapedAt: time.Now(),
		},
		Summary:      "Summary for " + title,
		Highlights:   []string{"a", "b"},
		StrategyUsed: "general",
	}
}

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "products_database.json"))
}

func TestMergeDeduplicatesByURL(t *testing.T) {
	store := tempStore(t)

	added, err := store.Merge([]models.EnrichedProduct{
		enrichedProduct("https://example.com/p/1", "One"),
		enrichedProduct("https://example.com/p/2", "Two"),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	// Re-merging the same batch is a no-op.
	added, err = store.Merge([]models.EnrichedProduct{
		enrichedProduct("https://example.com/p/1", "One again"),
		enrichedProduct("https://example.com/p/2", "Two again"),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 0 {
		t.Errorf("re-merge added = %d, want 0", added)
	}
	if store.Count() != 2 {
		t.Errorf("count = %d, want 2", store.Count())
	}

	// The first record wins; duplicates never overwrite.
	if got := store.Snapshot()[0].Title; got != "One" {
		t.Errorf("title = %q, want the original record preserved", got)
	}
}

func TestMergeDisjointBatches(t *testing.T) {
	store := tempStore(t)

	if _, err := store.Merge([]models.EnrichedProduct{enrichedProduct("https://example.com/p/1", "One")}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	added, err := store.Merge([]models.EnrichedProduct{
		enrichedProduct("https://example.com/p/2", "Two"),
		enrichedProduct("https://example.com/p/3", "Three"),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 2 || store.Count() != 3 {
		t.Errorf("added = %d, count = %d, want 2 and 3", added, store.Count())
	}
	if store.LastScraped() == nil {
		t.Error("last scraped must be stamped after a merge")
	}
}

func TestLoadSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products_database.json")

	store := NewFileStore(path)
	if _, err := store.Merge([]models.EnrichedProduct{
		enrichedProduct("https://example.com/p/1", "One"),
		enrichedProduct("https://example.com/p/2", "Two"),
	}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	reloaded := NewFileStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Count() != 2 {
		t.Errorf("reloaded count = %d, want 2", reloaded.Count())
	}
	if reloaded.LastScraped() == nil {
		t.Error("last scraped must survive the roundtrip")
	}

	products := reloaded.Snapshot()
	if products[0].Summary != "Summary for One" {
		t.Errorf("summary = %q", products[0].Summary)
	}
	if products[0].StrategyUsed != "general" {
		t.Errorf("strategy = %q", products[0].StrategyUsed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := tempStore(t)
	if err := store.Load(); err != nil {
		t.Fatalf("load of a missing file must start fresh, got %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("count = %d, want 0", store.Count())
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products_database.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("corrupt file must start fresh, got %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("count = %d, want 0", store.Count())
	}
}

func TestClear(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Merge([]models.EnrichedProduct{enrichedProduct("https://example.com/p/1", "One")}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	exists, _ := store.FileInfo()
	if !exists {
		t.Fatal("corpus file must exist after a merge")
	}

	cleared, err := store.Clear()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared != 1 || store.Count() != 0 {
		t.Errorf("cleared = %d, count = %d", cleared, store.Count())
	}
	if store.LastScraped() != nil {
		t.Error("last scraped must reset on clear")
	}
	if exists, _ := store.FileInfo(); exists {
		t.Error("backing file must be deleted on clear")
	}

	// Clearing an already-empty store is fine.
	if _, err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
