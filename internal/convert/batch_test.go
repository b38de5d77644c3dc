// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/md2epub/internal/metadata"
	"github.com/pdiddy/md2epub/internal/pandoc"
	"github.com/pdiddy/md2epub/pkg/types"
)

func setupTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\n")
	writeFile(t, dir, "b.md", "---\ntitle: Bee\nauthor: Front Matter Author\n---\n# B\n")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "sub/c.md", "# C\n")
	return dir
}

func TestDiscover(t *testing.T) {
	dir := setupTree(t)

	flat, err := Discover(dir, ".md", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "b.md")}, flat)

	deep, err := Discover(dir, ".md", true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "sub", "c.md"),
	}, deep)

	_, err = Discover(filepath.Join(dir, "missing"), ".md", false)
	assert.Error(t, err)
}

func TestDiscoverFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	shared := writeFile(t, filepath.Join(root, "shared"), "common.md", "# Common\n")
	dir := filepath.Join(root, "book")
	writeFile(t, dir, "real.md", "# Real\n")
	writeFile(t, dir, "part/inner.md", "# Inner\n")
	if err := os.Symlink(shared, filepath.Join(dir, "link.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.md"), filepath.Join(dir, "broken.md")))
	require.NoError(t, os.Symlink(filepath.Join(root, "shared"), filepath.Join(dir, "dir.md")))

	flat, err := Discover(dir, ".md", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "link.md"), filepath.Join(dir, "real.md")}, flat)

	deep, err := Discover(dir, ".md", true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "link.md"),
		filepath.Join(dir, "part", "inner.md"),
		filepath.Join(dir, "real.md"),
	}, deep)

	o, _ := newTestOrchestrator(&fakeRunner{}, types.ConverterConfig{})
	res := o.BatchConvertDirectory(context.Background(), dir, "", false, nil)
	assert.Equal(t, BatchResult{Total: 2, Succeeded: 2}, res)
}

func TestBatchConvertDirectory(t *testing.T) {
	tests := []struct {
		name      string
		recursive bool
		outputDir bool
		wantTotal int
		wantFiles []string
	}{
		{
			name:      "flat",
			wantTotal: 2,
			wantFiles: []string{"a.epub", "b.epub"},
		},
		{
			name:      "recursive",
			recursive: true,
			wantTotal: 3,
			wantFiles: []string{"a.epub", "b.epub", filepath.Join("sub", "c.epub")},
		},
		{
			name:      "flat into output dir",
			outputDir: true,
			wantTotal: 2,
			wantFiles: []string{filepath.Join("out", "a.epub"), filepath.Join("out", "b.epub")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTree(t)
			outDir := ""
			if tt.outputDir {
				outDir = filepath.Join(dir, "out")
			}

			o, out := newTestOrchestrator(&fakeRunner{}, types.ConverterConfig{})
			result := o.BatchConvertDirectory(context.Background(), dir, outDir, tt.recursive, nil)

			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.wantTotal, result.Succeeded)
			assert.False(t, result.HasFailures())
			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(dir, f))
			}
			assert.Contains(t, out.String(),
				fmt.Sprintf("Conversion complete: %d/%d files converted", tt.wantTotal, tt.wantTotal))
		})
	}
}

func TestBatchConvertDirectoryScenarioTwoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "A\n")
	writeFile(t, dir, "b.md", "B\n")

	o, out := newTestOrchestrator(&fakeRunner{}, types.ConverterConfig{})
	result := o.BatchConvertDirectory(context.Background(), dir, "", false, metadata.Metadata{"author": "X"})

	assert.Equal(t, BatchResult{Total: 2, Succeeded: 2}, result)
	assert.FileExists(t, filepath.Join(dir, "a.epub"))
	assert.FileExists(t, filepath.Join(dir, "b.epub"))
	assert.Contains(t, out.String(), "2/2")
}

func TestBatchContinuesAfterFailure(t *testing.T) {
	dir := setupTree(t)
	runner := &fakeRunner{runFunc: func(args []string) error {
		if strings.HasSuffix(args[0], "a.md") {
			return &pandoc.ExitError{Bin: "pandoc", Code: 1, Stderr: "cannot parse a.md"}
		}
		return writeOutput(args)
	}}
	o, out := newTestOrchestrator(runner, types.ConverterConfig{})
	result := o.BatchConvertDirectory(context.Background(), dir, "", false, nil)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed())
	assert.LessOrEqual(t, result.Succeeded, result.Total)
	assert.Contains(t, out.String(), "cannot parse a.md")
	assert.Contains(t, out.String(), "1/2")
}

func TestBatchShortCircuits(t *testing.T) {
	empty := t.TempDir()
	writeFile(t, empty, "readme.txt", "x")

	tests := []struct {
		name    string
		dir     string
		wantLog string
	}{
		{"missing directory", filepath.Join(empty, "nope"), "Directory not found"},
		{"no markdown files", empty, "No .md files found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			o, out := newTestOrchestrator(runner, types.ConverterConfig{})
			result := o.BatchConvertDirectory(context.Background(), tt.dir, "", true, nil)
			assert.Equal(t, BatchResult{}, result)
			assert.Contains(t, out.String(), tt.wantLog)
			assert.Empty(t, runner.calls)
		})
	}
}

func TestBatchStopsWhenCancelled(t *testing.T) {
	dir := setupTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	o, out := newTestOrchestrator(runner, types.ConverterConfig{})
	result := o.BatchConvertDirectory(ctx, dir, "", false, nil)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Empty(t, runner.calls)
	assert.Contains(t, out.String(), "Interrupted")
}

func TestBatchProgress(t *testing.T) {
	dir := setupTree(t)
	var progress bytes.Buffer
	o, _ := newTestOrchestrator(&fakeRunner{}, types.ConverterConfig{}, WithProgress(&progress))
	result := o.BatchConvertDirectory(context.Background(), dir, "", false, nil)
	assert.Equal(t, 2, result.Succeeded)
	assert.NotEmpty(t, progress.String())
}

func TestFileMetadata(t *testing.T) {
	dir := setupTree(t)
	o, _ := newTestOrchestrator(&fakeRunner{}, types.ConverterConfig{Author: "Default Author"})

	tests := []struct {
		name     string
		file     string
		template metadata.Metadata
		want     metadata.Metadata
	}{
		{
			name: "filename title and default author",
			file: "a.md",
			want: metadata.Metadata{"title": "A", "author": "Default Author"},
		},
		{
			name: "front matter kept without template",
			file: "b.md",
			want: metadata.Metadata{"title": "Bee", "author": "Front Matter Author"},
		},
		{
			name:     "template overrides front matter",
			file:     "b.md",
			template: metadata.Metadata{"author": "Template Author", "lang": "en"},
			want:     metadata.Metadata{"title": "Bee", "author": "Template Author", "lang": "en"},
		},
		{
			name:     "empty template values do not override",
			file:     "b.md",
			template: metadata.Metadata{"author": "", "lang": "en"},
			want:     metadata.Metadata{"title": "Bee", "author": "Front Matter Author", "lang": "en"},
		},
		{
			name:     "template title applies to every file",
			file:     "a.md",
			template: metadata.Metadata{"title": "Series"},
			want:     metadata.Metadata{"title": "Series", "author": "Default Author"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.FileMetadata(filepath.Join(dir, tt.file), tt.template)
			assert.Equal(t, tt.want, got)
		})
	}
}
