// Package file provides file-based persistence for analysis records. It is
// the default backend for local development and tests; one JSON document per
// analysis under the root directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/persistence"
)

type Persistence struct {
	root string
	mu   sync.RWMutex
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) SaveAnalysis(_ context.Context, analysis *models.Analysis) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := os.MkdirAll(fp.root, 0o755); err != nil {
		return fmt.Errorf("creating analyses directory: %w", err)
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis %s: %w", analysis.ID, err)
	}

	if err := os.WriteFile(fp.path(analysis.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing analysis %s: %w", analysis.ID, err)
	}

	return nil
}

func (fp *Persistence) AnalysisByID(_ context.Context, id string) (*models.Analysis, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	data, err := os.ReadFile(fp.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrAnalysisNotFound
		}

		return nil, fmt.Errorf("reading analysis %s: %w", id, err)
	}

	var analysis models.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("decoding analysis %s: %w", id, err)
	}

	return &analysis, nil
}

func (fp *Persistence) ListAnalyses(_ context.Context, opts persistence.ListAnalysesOptions) (*persistence.ListAnalysesResult, error) {
	if opts.SortBy != "" && !slices.Contains(persistence.SortableFields, opts.SortBy) {
		return nil, persistence.ErrInvalidSortField
	}

	if opts.SortOrder != "" && opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return nil, persistence.ErrInvalidSortOrder
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	all, err := fp.loadAll()
	if err != nil {
		return nil, err
	}

	if opts.Status != nil {
		filtered := all[:0]

		for _, analysis := range all {
			if analysis.Status == *opts.Status {
				filtered = append(filtered, analysis)
			}
		}

		all = filtered
	}

	sortAnalyses(all, opts.SortBy, opts.SortOrder)

	total := int64(len(all))

	start := opts.Offset
	if start > len(all) {
		start = len(all)
	}

	end := len(all)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	return &persistence.ListAnalysesResult{
		Analyses:    all[start:end],
		TotalCount:  total,
		HasNextPage: int64(end) < total,
	}, nil
}

func (fp *Persistence) loadAll() ([]*models.Analysis, error) {
	entries, err := os.ReadDir(fp.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading analyses directory: %w", err)
	}

	analyses := make([]*models.Analysis, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(fp.root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		var analysis models.Analysis
		if err := json.Unmarshal(data, &analysis); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", entry.Name(), err)
		}

		analyses = append(analyses, &analysis)
	}

	return analyses, nil
}

func sortAnalyses(analyses []*models.Analysis, sortBy, sortOrder string) {
	if sortBy == "" {
		sortBy = "created_at"
	}

	desc := sortOrder != "asc"

	sort.SliceStable(analyses, func(i, j int) bool {
		a, b := analyses[i], analyses[j]
		if desc {
			a, b = b, a
		}

		switch sortBy {
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "title":
			return a.Title < b.Title
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func (fp *Persistence) path(id string) string {
	return filepath.Join(fp.root, id+".json")
}
