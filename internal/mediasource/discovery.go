package mediasource

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/player"
)

// fileInfo holds information about a discovered audio file.
type fileInfo struct {
	path string
	root string
}

// discoverFiles walks the roots and returns every playable file, sorted by
// path. Unreadable entries are skipped; ctx cancellation aborts the walk.
func discoverFiles(ctx context.Context, roots []string) ([]fileInfo, error) {
	var files []fileInfo
	seen := make(map[string]struct{})

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		err = filepath.WalkDir(abs, func(path string, d os.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				log.Debug().Err(walkErr).Str("component", "mediasource").Str("path", path).Msg("skipping")
				return nil //nolint:nilerr // keep scanning other paths
			}
			if d.IsDir() || !player.IsSupported(path) {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			files = append(files, fileInfo{path: path, root: abs})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(files, func(a, b fileInfo) int {
		switch {
		case a.path < b.path:
			return -1
		case a.path > b.path:
			return 1
		default:
			return 0
		}
	})
	return files, nil
}
