package config

import "context"

// Loader is the interface for a format-specific graph description loader.
type Loader interface {
	// Load reads the given files or directories, translates them into the
	// format-agnostic model and merges them. Paths that do not exist are
	// skipped.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Extensions lists the file extensions the loader understands,
	// including the leading dot.
	Extensions() []string
}
