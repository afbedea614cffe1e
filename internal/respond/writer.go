// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package respond

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/petar-djukic/cdml-coder/pkg/types"
)

// WriteFiles writes generated files under root, creating parent
// directories as needed. Each write is atomic. Writing continues past
// per-file failures; the returned slice lists the paths actually written.
func WriteFiles(root string, files []types.GeneratedFile) ([]string, []error) {
	var written []string
	var errs []error

	for _, f := range files {
		rel := filepath.Clean(f.Path)
		if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
			errs = append(errs, fmt.Errorf("refusing path outside the work tree: %s", f.Path))
			continue
		}
		full := filepath.Join(root, rel)

		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			errs = append(errs, fmt.Errorf("creating directory for %s: %w", rel, err))
			continue
		}
		if err := atomicWrite(full, []byte(f.Content)); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", rel, err))
			continue
		}
		written = append(written, rel)
	}
	return written, errs
}

// atomicWrite writes data to a temp file in the same directory, then renames
// it to the target path. This prevents partial writes from corrupting files.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Preserve original file permissions if the file exists.
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".cdml-coder-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
