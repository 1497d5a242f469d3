package imageio

import (
	"context"
	"sync"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"golang.org/x/sync/errgroup"
)

// LoadAll decodes the named image files in parallel. The first failure
// cancels the remaining reads.
func LoadAll(ctx context.Context, paths map[string]string) (map[string]*memory.Buffer, error) {
	logger := ctxlog.FromContext(ctx)
	images := make(map[string]*memory.Buffer, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buf, err := ReadFile(path, name)
			if err != nil {
				return err
			}
			logger.Debug("Input image loaded.", "name", name, "path", path, "width", buf.Width(), "height", buf.Height())

			mu.Lock()
			images[name] = buf
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
