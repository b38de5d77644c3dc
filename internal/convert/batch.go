// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/md2epub/internal/metadata"
	"github.com/pdiddy/md2epub/internal/term"
)

// BatchResult holds the outcome of a directory conversion run.
type BatchResult struct {
	Total     int
	Succeeded int
}

// Failed returns the number of files that were found but not converted.
func (r BatchResult) Failed() int {
	return r.Total - r.Succeeded
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed() > 0
}

// Discover returns the files under dir whose extension is ext, sorted by
// path. Only dir itself is searched unless recursive is set.
func Discover(dir, ext string, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", dir, err)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if filepath.Ext(path) == ext && isFile(path, e) {
				files = append(files, path)
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ext && isFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// isFile reports whether the entry is a regular file, following symlinks.
// Broken links are skipped.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// BatchConvertDirectory converts every Markdown file in dir to its own
// publication. Per-file metadata starts from the file's front matter and
// file-name title; non-empty template values override it, and a missing
// author falls back to the configured default. Failures are reported per
// file and do not stop the batch.
func (o *Orchestrator) BatchConvertDirectory(ctx context.Context, dir, outputDir string, recursive bool, template metadata.Metadata) BatchResult {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(o.out, "%s Directory not found: %s\n", term.Fail(), dir)
		return BatchResult{}
	}

	files, err := Discover(dir, o.cfg.InputExt, recursive)
	if err != nil {
		fmt.Fprintf(o.out, "%s %v\n", term.Fail(), err)
		return BatchResult{}
	}
	if len(files) == 0 {
		fmt.Fprintf(o.out, "%s No %s files found in %s\n", term.Fail(), o.cfg.InputExt, dir)
		return BatchResult{}
	}

	fmt.Fprintf(o.out, "\nFound %d markdown file(s)\n\n", len(files))

	var bar *progressbar.ProgressBar
	if o.progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(o.progress),
			progressbar.OptionSetDescription("Converting files..."),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	result := BatchResult{Total: len(files)}
	for _, file := range files {
		if ctx.Err() != nil {
			fmt.Fprintf(o.out, "%s Interrupted, remaining files skipped\n", term.Warn())
			break
		}
		if o.ConvertOne(ctx, file, outputDir, o.FileMetadata(file, template)) {
			result.Succeeded++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Fprintf(o.out, "\n%s Conversion complete: %d/%d files converted\n", term.OK(), result.Succeeded, result.Total)
	return result
}

// FileMetadata derives the metadata for one file of a batch.
func (o *Orchestrator) FileMetadata(path string, template metadata.Metadata) metadata.Metadata {
	meta := metadata.FromFile(path)
	for k, v := range template {
		if v != "" {
			meta[k] = v
		}
	}
	if !meta.Has(metadata.KeyAuthor) && o.cfg.Author != "" {
		meta[metadata.KeyAuthor] = o.cfg.Author
	}
	if !meta.Has(metadata.KeyTitle) {
		meta[metadata.KeyTitle] = metadata.TitleFromFilename(path)
	}
	return meta
}
