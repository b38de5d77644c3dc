// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/md2epub/internal/metadata"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.yaml")
	content := `title: Field Guide
author: Ada
lang: en
output: guide
output_dir: dist
files:
  - intro.md
  - chapters/one.md
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "intro.md"),
		filepath.Join(dir, "chapters", "one.md"),
	}, m.Paths())
	assert.Equal(t, "guide", m.OutputName())
	assert.Equal(t, filepath.Join(dir, "dist"), m.ResolvedOutputDir())
	assert.Equal(t, metadata.Metadata{"title": "Field Guide", "author": "Ada", "lang": "en"}, m.Metadata())
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading manifest")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("files: [unterminated"), 0o644))
	_, err = Read(bad)
	assert.ErrorContains(t, err, "parsing manifest")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("title: Nothing\n"), 0o644))
	_, err = Read(empty)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestOutputNameFallbacks(t *testing.T) {
	assert.Equal(t, "My Book", (&Manifest{Title: "My Book"}).OutputName())
	assert.Equal(t, "merged_document", (&Manifest{}).OutputName())
	assert.Equal(t, "", (&Manifest{}).ResolvedOutputDir())
}

func TestFromDirectoryRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "travel_notes")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	m, err := FromDirectory(dir, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "sub", "b.md"),
	}, "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Travel Notes", m.Title)
	assert.Equal(t, []string{"a.md", "sub/b.md"}, m.Files)

	path := filepath.Join(dir, "book.yaml")
	require.NoError(t, Write(path, m))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, m.Paths(), got.Paths())
	assert.Equal(t, "travel_notes", got.OutputName())
}
