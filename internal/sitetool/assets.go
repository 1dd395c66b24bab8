package sitetool

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/folio/backend/internal/storage"
)

// CopyResult summarises a CopyAssets run.
type CopyResult struct {
	Files int
	Bytes int64
}

// ProgressFunc is called after each file is copied with the running byte
// count and the total.
type ProgressFunc func(done, total int64)

// CopyAssets copies every regular file in src into dst, keeping relative
// paths. Misplaced files are skipped.
func CopyAssets(ctx context.Context, src fs.FS, dst storage.Storage, progress ProgressFunc) (CopyResult, error) {
	type entry struct {
		path string
		size int64
		mode fs.FileMode
	}
	var (
		files []entry
		total int64
	)
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || IsMisplaced(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, entry{path: p, size: info.Size(), mode: info.Mode()})
		total += info.Size()
		return nil
	})
	if err != nil {
		return CopyResult{}, fmt.Errorf("scan assets: %w", err)
	}

	var res CopyResult
	for _, e := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := copyOne(ctx, src, dst, e.path, e.mode); err != nil {
			return res, err
		}
		res.Files++
		res.Bytes += e.size
		if progress != nil {
			progress(res.Bytes, total)
		}
	}
	return res, nil
}

func copyOne(ctx context.Context, src fs.FS, dst storage.Storage, name string, mode fs.FileMode) error {
	f, err := src.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	if _, err := dst.Save(ctx, name, f, mode); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}
