package templates

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	"github.com/linkcardapp/linkcard-server/internal/watcher"
)

// Registry serves card templates: built-in presets plus JSON files from an
// optional directory. Directory templates override built-ins with the same ID.
type Registry struct {
	logger *slog.Logger
	dir    string // Empty disables directory loading

	mu      sync.RWMutex
	builtin []domain.Template
	custom  map[string]domain.Template

	// OnReload is invoked after the directory is re-read, with the total
	// template count. Wired to the SSE manager so open editors refresh
	// their template picker.
	OnReload func(count int)
}

// NewRegistry creates a template registry. dir may be empty, in which case
// only built-in presets are served.
func NewRegistry(dir string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		logger:  logger,
		dir:     dir,
		builtin: Builtin(),
		custom:  make(map[string]domain.Template),
	}

	if dir != "" {
		if err := r.loadDir(); err != nil {
			return nil, fmt.Errorf("load template directory: %w", err)
		}
	}

	return r, nil
}

// List returns all templates: built-ins in display order, then directory
// templates sorted by ID. A directory template with a built-in's ID replaces
// it in place.
func (r *Registry) List() []domain.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Template, 0, len(r.builtin)+len(r.custom))
	seen := make(map[string]bool, len(r.builtin))

	for _, t := range r.builtin {
		if override, ok := r.custom[t.ID]; ok {
			out = append(out, override)
		} else {
			out = append(out, t)
		}
		seen[t.ID] = true
	}

	extra := make([]domain.Template, 0, len(r.custom))
	for id, t := range r.custom {
		if !seen[id] {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].ID < extra[j].ID })

	return append(out, extra...)
}

// Get returns the template with the given ID.
func (r *Registry) Get(id string) (domain.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.custom[id]; ok {
		return t, true
	}
	for _, t := range r.builtin {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Template{}, false
}

// Count returns the number of available templates.
func (r *Registry) Count() int {
	return len(r.List())
}

// loadDir replaces the custom template set from the directory contents.
// Unreadable or invalid files are logged and skipped so one bad template
// doesn't take the rest down.
func (r *Registry) loadDir() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	custom := make(map[string]domain.Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(r.dir, entry.Name())
		tmpl, err := readTemplateFile(path)
		if err != nil {
			r.logger.Warn("skipping invalid template file",
				"path", path,
				"error", err,
			)
			continue
		}
		custom[tmpl.ID] = *tmpl
	}

	r.mu.Lock()
	r.custom = custom
	r.mu.Unlock()

	r.logger.Info("loaded template directory",
		"dir", r.dir,
		"count", len(custom),
	)
	return nil
}

// readTemplateFile parses a single template JSON file.
func readTemplateFile(path string) (*domain.Template, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- Template paths come from the configured directory
	if err != nil {
		return nil, err
	}

	var tmpl domain.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if tmpl.ID == "" {
		return nil, fmt.Errorf("template is missing an id")
	}
	if tmpl.Name == "" {
		tmpl.Name = tmpl.ID
	}
	return &tmpl, nil
}

// Watch reloads the directory whenever template files change.
// Blocks until the context is cancelled; no-op when no directory is set.
func (r *Registry) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	w, err := watcher.New(r.logger, watcher.Options{})
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	defer w.Stop() //nolint:errcheck // Best-effort cleanup on exit

	if err := w.Watch(r.dir); err != nil {
		return fmt.Errorf("watch template directory: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-w.Events():
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Path, ".json") {
					continue
				}
				r.logger.Info("template file changed, reloading",
					"path", event.Path,
					"change", event.Type.String(),
				)
				if err := r.loadDir(); err != nil {
					r.logger.Error("failed to reload templates", "error", err)
					continue
				}
				if r.OnReload != nil {
					r.OnReload(r.Count())
				}
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				r.logger.Error("template watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	return w.Start(ctx)
}
