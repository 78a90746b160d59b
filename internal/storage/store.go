// Package storage persists the enriched product corpus as a JSON file.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// corpusFile is the on-disk shape of the product corpus.
type corpusFile struct {
	Products    []models.EnrichedProduct `json:"products"`
	LastScraped *time.Time               `json:"last_scraped"`
	TotalCount  int                      `json:"total_count"`
	SavedAt     time.Time                `json:"saved_at"`
}

// FileStore holds the corpus in memory and mirrors it to a JSON file.
// Merges deduplicate by product URL. Writes go through a temp file rename
// so a crash cannot leave a half-written corpus behind.
type FileStore struct {
	mu          sync.RWMutex
	path        string
	products    []models.EnrichedProduct
	lastScraped *time.Time
	logger      types.Logger
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: logging.GetGlobalLogger(),
	}
}

// Load reads the corpus from disk. A missing file starts an empty corpus;
// a corrupt file is logged and treated the same way.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.logger.Info("No existing corpus file, starting fresh", map[string]interface{}{
				"path": fs.path,
			})
			fs.products = nil
			fs.lastScraped = nil
			return nil
		}
		return fmt.Errorf("failed to read corpus file: %w", err)
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		fs.logger.Warn("Corpus file is corrupt, starting fresh", map[string]interface{}{
			"path":  fs.path,
			"error": err.Error(),
		})
		fs.products = nil
		fs.lastScraped = nil
		return nil
	}

	fs.products = file.Products
	fs.lastScraped = file.LastScraped

	fs.logger.Info("Loaded product corpus", map[string]interface{}{
		"path":  fs.path,
		"count": len(fs.products),
	})
	return nil
}

// Save writes the current corpus to disk atomically.
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.saveLocked()
}

func (fs *FileStore) saveLocked() error {
	file := corpusFile{
		Products:    fs.products,
		LastScraped: fs.lastScraped,
		TotalCount:  len(fs.products),
		SavedAt:     time.Now(),
	}
	if file.Products == nil {
		file.Products = []models.EnrichedProduct{}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp corpus file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace corpus file: %w", err)
	}

	fs.logger.Info("Saved product corpus", map[string]interface{}{
		"path":  fs.path,
		"count": len(fs.products),
	})
	return nil
}

// Merge appends the batch records whose URLs are not already in the corpus,
// stamps the scrape time, and saves. It returns how many records were added.
func (fs *FileStore) Merge(batch []models.EnrichedProduct) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	existing := make(map[string]bool, len(fs.products))
	for _, p := range fs.products {
		existing[p.URL] = true
	}

	added := 0
	for _, p := range batch {
		if existing[p.URL] {
			continue
		}
		existing[p.URL] = true
		fs.products = append(fs.products, p)
		added++
	}

	now := time.Now()
	fs.lastScraped = &now

	if err := fs.saveLocked(); err != nil {
		return added, err
	}
	return added, nil
}

// Clear drops the corpus and deletes the backing file.
func (fs *FileStore) Clear() (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	cleared := len(fs.products)
	fs.products = nil
	fs.lastScraped = nil

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return cleared, fmt.Errorf("failed to delete corpus file: %w", err)
	}

	fs.logger.Info("Cleared product corpus", map[string]interface{}{
		"path":    fs.path,
		"cleared": cleared,
	})
	return cleared, nil
}

// Snapshot returns a copy of the corpus.
func (fs *FileStore) Snapshot() []models.EnrichedProduct {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]models.EnrichedProduct, len(fs.products))
	copy(out, fs.products)
	return out
}

// Count returns the corpus size.
func (fs *FileStore) Count() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.products)
}

// LastScraped returns when the corpus last absorbed a batch, or nil.
func (fs *FileStore) LastScraped() *time.Time {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.lastScraped == nil {
		return nil
	}
	t := *fs.lastScraped
	return &t
}

// FilePath returns the backing file path.
func (fs *FileStore) FilePath() string {
	return fs.path
}

// FileInfo reports whether the backing file exists and its size.
func (fs *FileStore) FileInfo() (bool, int64) {
	info, err := os.Stat(fs.path)
	if err != nil {
		return false, 0
	}
	return true, info.Size()
}
