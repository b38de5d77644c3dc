// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration shared between the CLI and the
// conversion packages.
package types

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults applied when the configuration leaves a field empty.
const (
	DefaultConverter    = "pandoc"
	DefaultTOCDepth     = 3
	DefaultChapterLevel = 2
	DefaultStylesheet   = "style.css"
	DefaultLang         = "en"
	DefaultInputExt     = ".md"
	DefaultOutputExt    = ".epub"
	DefaultHistoryPath  = "md2epub-history.db"
)

// ConverterConfig holds the settings used to build converter command lines.
type ConverterConfig struct {
	// Converter is the name or path of the external converter binary.
	Converter string `json:"pandoc" yaml:"pandoc" mapstructure:"pandoc"`

	// TOCDepth is the deepest heading level included in the navigation.
	TOCDepth int `json:"toc_depth" yaml:"toc_depth" mapstructure:"toc_depth"`

	// ChapterLevel is the heading level at which chapters are split.
	ChapterLevel int `json:"chapter_level" yaml:"chapter_level" mapstructure:"chapter_level"`

	// Stylesheet is the CSS file passed to the converter when it exists.
	Stylesheet string `json:"css" yaml:"css" mapstructure:"css"`

	// Author is the default author for conversions that do not set one.
	Author string `json:"author" yaml:"author" mapstructure:"author"`

	// Lang is the default language code.
	Lang string `json:"lang" yaml:"lang" mapstructure:"lang"`

	InputExt  string `json:"-" yaml:"-" mapstructure:"-"`
	OutputExt string `json:"-" yaml:"-" mapstructure:"-"`
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c ConverterConfig) WithDefaults() ConverterConfig {
	if c.Converter == "" {
		c.Converter = DefaultConverter
	}
	if c.TOCDepth == 0 {
		c.TOCDepth = DefaultTOCDepth
	}
	if c.ChapterLevel == 0 {
		c.ChapterLevel = DefaultChapterLevel
	}
	if c.Lang == "" {
		c.Lang = DefaultLang
	}
	if c.InputExt == "" {
		c.InputExt = DefaultInputExt
	}
	if c.OutputExt == "" {
		c.OutputExt = DefaultOutputExt
	}
	return c
}

// Validate checks that heading levels are within the range Markdown allows.
func (c ConverterConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Converter, validation.Required),
		validation.Field(&c.TOCDepth, validation.Required, validation.Min(1), validation.Max(6)),
		validation.Field(&c.ChapterLevel, validation.Required, validation.Min(1), validation.Max(6)),
	)
}

// HistoryConfig controls the optional conversion history database.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups everything read from md2epub.yaml.
type Config struct {
	ConverterConfig `yaml:",inline" mapstructure:",squash"`

	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}
