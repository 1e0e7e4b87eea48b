package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures watcher behavior.
type Options struct {
	// IgnorePatterns are glob patterns matched against base names.
	// Leaving it nil selects defaults that skip editor droppings.
	IgnorePatterns []string

	// SettleDelay is how long a file must stay quiet before an event is
	// emitted. Editors often write in several bursts.
	SettleDelay time.Duration

	IgnoreHidden bool
}

var defaultIgnorePatterns = []string{
	".DS_Store",
	"Thumbs.db",
	"*.tmp",
	"*.temp",
	"*.swp",
	"*~",
}

// setDefaults fills in unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 100 * time.Millisecond
	}

	// nil means "no preference": take the defaults and skip hidden files.
	// An explicitly empty slice keeps the caller's IgnoreHidden choice.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = defaultIgnorePatterns
		o.IgnoreHidden = true
	}
}

// shouldIgnore reports whether a path is filtered out.
func (o *Options) shouldIgnore(path string) bool {
	if o.IgnoreHidden && hasHiddenComponent(path) {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// hasHiddenComponent reports whether any path element is dot-prefixed.
func hasHiddenComponent(path string) bool {
	for _, part := range strings.Split(filepath.Clean(path), string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
