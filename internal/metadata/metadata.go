// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata holds the ePub metadata bag and derives it from Markdown
// front matter and file names.
package metadata

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Recognized metadata keys in the order they are passed to the converter.
const (
	KeyTitle       = "title"
	KeyAuthor      = "author"
	KeyLang        = "lang"
	KeyDescription = "description"
	KeyPublisher   = "publisher"
	KeyDate        = "date"
)

// Keys lists the recognized keys in converter order.
var Keys = []string{KeyTitle, KeyAuthor, KeyLang, KeyDescription, KeyPublisher, KeyDate}

const dateFmt = "2006-01-02"

// Metadata maps recognized keys to values. Empty values count as absent.
type Metadata map[string]string

// Clone returns an independent copy of m. Cloning nil yields an empty bag.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Has reports whether key holds a non-empty value.
func (m Metadata) Has(key string) bool {
	return strings.TrimSpace(m[key]) != ""
}

// Pairs returns "key=value" strings for every populated recognized key, in
// converter order.
func (m Metadata) Pairs() []string {
	var pairs []string
	for _, k := range Keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	return pairs
}

var (
	langPattern = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{2,8})*$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validate checks that an author is present and that lang and date, when
// set, are well formed.
func (m Metadata) Validate() error {
	author := strings.TrimSpace(m[KeyAuthor])
	lang := m[KeyLang]
	date := m[KeyDate]
	return validation.Errors{
		KeyAuthor: validation.Validate(author, validation.Required.Error("author name is required")),
		KeyLang:   validation.Validate(lang, validation.Match(langPattern).Error("must be a language code such as en or pt-BR")),
		KeyDate:   validation.Validate(date, validation.Match(datePattern).Error("must be formatted YYYY-MM-DD")),
	}.Filter()
}

var titleCaser = cases.Title(language.Und)

// TitleFromFilename derives a title from path's base name: the extension is
// dropped, underscores and hyphens become spaces, and each word is
// capitalized.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return titleCaser.String(stem)
}

// FromFile reads the front matter of the Markdown file at path and returns
// the recognized keys it sets. A missing title is filled from the file name.
// Unreadable files and malformed front matter yield the file-name defaults.
func FromFile(path string) Metadata {
	m := Metadata{}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("reading front matter", "path", path, "err", err)
	} else {
		fm, err := Parse(data)
		if err != nil {
			slog.Debug("ignoring malformed front matter", "path", path, "err", err)
		}
		m = fm
	}

	if !m.Has(KeyTitle) {
		m[KeyTitle] = TitleFromFilename(path)
	}
	return m
}

// Parse extracts the recognized keys from the front matter in source.
// Content without front matter yields an empty bag.
func Parse(source []byte) (Metadata, error) {
	raw := map[string]any{}
	if _, err := frontmatter.Parse(bytes.NewReader(source), &raw); err != nil {
		return Metadata{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	m := Metadata{}
	for _, k := range Keys {
		if v, ok := raw[k]; ok {
			if s := stringify(v); s != "" {
				m[k] = s
			}
		}
	}
	// "language" is a common alias in front matter.
	if !m.Has(KeyLang) {
		if v, ok := raw["language"]; ok {
			if s := stringify(v); s != "" {
				m[KeyLang] = s
			}
		}
	}
	return m, nil
}

// StripFrontMatter returns content without its leading front-matter block.
// Content that has no block, or whose block cannot be parsed, is returned
// unchanged.
func StripFrontMatter(content []byte) []byte {
	var discard map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(content), &discard)
	if err != nil {
		return content
	}
	return body
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.Format(dateFmt)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := stringify(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Today returns the current date in the format used for the date key.
func Today() string {
	return time.Now().Format(dateFmt)
}
