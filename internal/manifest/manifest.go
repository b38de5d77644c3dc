// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest reads and writes book manifests: YAML files that name an
// ordered list of Markdown files to merge into one publication, together
// with its metadata.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/md2epub/internal/metadata"
)

// Manifest is the on-disk representation of a book.
type Manifest struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Lang        string   `yaml:"lang,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Publisher   string   `yaml:"publisher,omitempty"`
	Date        string   `yaml:"date,omitempty"`
	Output      string   `yaml:"output,omitempty"`
	OutputDir   string   `yaml:"output_dir,omitempty"`
	Files       []string `yaml:"files"`

	// dir is the directory the manifest was read from.
	dir string
}

// ErrNoFiles is returned when a manifest lists no files.
var ErrNoFiles = errors.New("manifest lists no files")

// Read loads the manifest at path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoFiles)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Write saves m to path as YAML.
func Write(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// FromDirectory builds a manifest listing files relative to dir, titled
// after the directory.
func FromDirectory(dir string, files []string, author string) (*Manifest, error) {
	m := &Manifest{
		Title:  metadata.TitleFromFilename(filepath.Base(dir) + ".md"),
		Author: author,
		Output: filepath.Base(dir),
		dir:    dir,
	}
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", f, err)
		}
		m.Files = append(m.Files, filepath.ToSlash(rel))
	}
	return m, nil
}

// Paths returns the listed files resolved against the manifest directory.
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.Files))
	for i, f := range m.Files {
		f = filepath.FromSlash(f)
		if filepath.IsAbs(f) {
			paths[i] = f
		} else {
			paths[i] = filepath.Join(m.dir, f)
		}
	}
	return paths
}

// OutputName returns the merged publication's base name: Output when set,
// otherwise the title.
func (m *Manifest) OutputName() string {
	if name := strings.TrimSpace(m.Output); name != "" {
		return name
	}
	if m.Title != "" {
		return m.Title
	}
	return "merged_document"
}

// ResolvedOutputDir returns OutputDir resolved against the manifest
// directory, or "" when unset.
func (m *Manifest) ResolvedOutputDir() string {
	if m.OutputDir == "" || filepath.IsAbs(m.OutputDir) {
		return m.OutputDir
	}
	return filepath.Join(m.dir, m.OutputDir)
}

// Metadata returns the manifest's metadata bag.
func (m *Manifest) Metadata() metadata.Metadata {
	meta := metadata.Metadata{
		metadata.KeyTitle:       m.Title,
		metadata.KeyAuthor:      m.Author,
		metadata.KeyLang:        m.Lang,
		metadata.KeyDescription: m.Description,
		metadata.KeyPublisher:   m.Publisher,
		metadata.KeyDate:        m.Date,
	}
	for k, v := range meta {
		if v == "" {
			delete(meta, k)
		}
	}
	return meta
}
