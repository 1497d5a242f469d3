package execution

import (
	"errors"
	"runtime"

	"github.com/specialistvlad/tilecomp/internal/operation"
)

// DefaultChunkSize is the tile edge used when none is configured.
const DefaultChunkSize = 64

// Settings are the render settings of one evaluation.
type Settings struct {
	Resolution operation.Resolution
	Quality    operation.Quality
	ChunkSize  int
	Workers    int
}

func (s Settings) withDefaults() Settings {
	if s.ChunkSize <= 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	return s
}

// Validate checks that the settings describe a renderable frame.
func (s Settings) Validate() error {
	if s.Resolution.IsZero() {
		return errors.New("render resolution must be positive")
	}
	return nil
}
