// Package sitetool implements the site deployment-hygiene tasks behind
// folioctl's site commands.
package sitetool

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are never descended into by Clean.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// IsMisplaced reports whether a file name is editor, OS or merge debris that
// must not ship with the site.
func IsMisplaced(name string) bool {
	switch name {
	case ".DS_Store", "Thumbs.db", "desktop.ini":
		return true
	}
	if strings.HasSuffix(name, "~") {
		return true
	}
	switch filepath.Ext(name) {
	case ".orig", ".rej", ".tmp", ".swp", ".bak":
		return true
	}
	return false
}

// Clean removes misplaced files below root and returns their paths relative
// to root. With dryRun set nothing is removed.
func Clean(root string, dryRun bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMisplaced(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		if dryRun {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		slog.Debug("removed misplaced file", "path", rel)
		return nil
	})
	return found, err
}
