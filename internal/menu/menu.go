// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package menu implements the interactive conversion menu.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/md2epub/internal/convert"
	"github.com/pdiddy/md2epub/internal/metadata"
	"github.com/pdiddy/md2epub/internal/prompt"
	"github.com/pdiddy/md2epub/internal/stylesheet"
	"github.com/pdiddy/md2epub/internal/term"
)

// Menu choices in display order.
const (
	ChoiceConvertFile = iota
	ChoiceMergeFiles
	ChoiceConvertDir
	ChoiceMergeDir
	ChoiceStylesheet
	ChoiceExit
)

var choices = []string{
	"Convert single file to ePub",
	"Merge multiple files into one ePub",
	"Convert directory (one ePub per file)",
	"Merge directory into one ePub",
	"Create/regenerate CSS file",
	"Exit",
}

const defaultMergeName = "merged_document"

// Menu drives conversions from interactive answers.
type Menu struct {
	orch    *convert.Orchestrator
	ask     *prompt.Prompter
	out     io.Writer
	cssPath string
}

// New returns a Menu that converts through orch. cssPath is where the
// default stylesheet is looked for and written.
func New(orch *convert.Orchestrator, ask *prompt.Prompter, out io.Writer, cssPath string) *Menu {
	return &Menu{orch: orch, ask: ask, out: out, cssPath: cssPath}
}

// Start sets up the stylesheet and then runs the menu loop.
func (m *Menu) Start(ctx context.Context) error {
	if err := m.SetupStylesheet(ctx); err != nil {
		return m.finish(err)
	}
	return m.Run(ctx)
}

// Run shows the menu until the user exits, declines another operation, or
// interrupts. End of input also ends the loop.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out)
		exit, err := m.RunOnce(ctx)
		if err != nil {
			return m.finish(err)
		}
		if exit {
			return m.finish(nil)
		}

		fmt.Fprintln(m.out)
		again, err := m.ask.Confirm(ctx, "Perform another operation?", true)
		if err != nil {
			return m.finish(err)
		}
		if !again {
			return m.finish(nil)
		}
	}
}

func (m *Menu) finish(err error) error {
	switch {
	case errors.Is(err, prompt.ErrInterrupted):
		fmt.Fprintln(m.out, "\n\nInterrupted by user")
		err = nil
	case errors.Is(err, io.EOF):
		err = nil
	}
	fmt.Fprintln(m.out, "\nThanks for using md2epub!")
	return err
}

// RunOnce shows the menu once and performs the chosen action. It reports
// whether the user chose to exit.
func (m *Menu) RunOnce(ctx context.Context) (bool, error) {
	choice, err := m.ask.Select(ctx, "What would you like to do?", choices)
	if err != nil {
		return false, err
	}

	switch choice {
	case ChoiceConvertFile:
		return false, m.convertFile(ctx)
	case ChoiceMergeFiles:
		return false, m.mergeFiles(ctx)
	case ChoiceConvertDir:
		return false, m.convertDir(ctx)
	case ChoiceMergeDir:
		return false, m.mergeDir(ctx)
	case ChoiceStylesheet:
		m.writeStylesheet()
		return false, nil
	default:
		return true, nil
	}
}

// SetupStylesheet offers to use an existing stylesheet, pick another one,
// or create the default, and configures the orchestrator accordingly.
func (m *Menu) SetupStylesheet(ctx context.Context) error {
	if stylesheet.Exists(m.cssPath) {
		use, err := m.ask.Confirm(ctx, fmt.Sprintf("Found existing CSS file: %s. Use this file?", m.cssPath), true)
		if err != nil {
			return err
		}
		if use {
			fmt.Fprintf(m.out, "%s Using existing CSS: %s\n", term.OK(), m.cssPath)
			m.orch.SetStylesheet(m.cssPath)
			return nil
		}
		custom, err := m.ask.Text(ctx, "Enter path to your custom CSS file:", "")
		if err != nil {
			return err
		}
		if stylesheet.Exists(custom) {
			fmt.Fprintf(m.out, "%s Using custom CSS: %s\n", term.OK(), custom)
			m.orch.SetStylesheet(custom)
			return nil
		}
		fmt.Fprintf(m.out, "%s Invalid path, creating default CSS\n", term.Warn())
		m.writeStylesheet()
		return nil
	}

	create, err := m.ask.Confirm(ctx, "No CSS file found. Create optimized CSS?", true)
	if err != nil {
		return err
	}
	if create {
		m.writeStylesheet()
		return nil
	}
	custom, err := m.ask.Text(ctx, "Enter path to your custom CSS file:", "")
	if err != nil {
		return err
	}
	if stylesheet.Exists(custom) {
		m.orch.SetStylesheet(custom)
		return nil
	}
	fmt.Fprintf(m.out, "%s No valid CSS provided, proceeding without CSS\n", term.Warn())
	m.orch.SetStylesheet("")
	return nil
}

func (m *Menu) writeStylesheet() {
	if err := stylesheet.Write(m.cssPath); err != nil {
		fmt.Fprintf(m.out, "%s %v\n", term.Fail(), err)
		return
	}
	fmt.Fprintf(m.out, "%s Optimized CSS created: %s\n", term.OK(), m.cssPath)
	m.orch.SetStylesheet(m.cssPath)
}

func (m *Menu) convertFile(ctx context.Context) error {
	path, err := m.ask.Text(ctx, "Select markdown file:", "")
	if err != nil || path == "" {
		return err
	}
	if filepath.Ext(path) != m.orch.Config().InputExt {
		fmt.Fprintf(m.out, "%s File must have %s extension\n", term.Fail(), m.orch.Config().InputExt)
		return nil
	}

	meta, err := m.collectMetadata(ctx, metadata.FromFile(path))
	if err != nil {
		return err
	}
	outputDir, err := m.askOutputDir(ctx)
	if err != nil {
		return err
	}
	m.orch.ConvertOne(ctx, path, outputDir, meta)
	return nil
}

func (m *Menu) mergeFiles(ctx context.Context) error {
	fmt.Fprintln(m.out, "\nSelect multiple markdown files to merge")
	fmt.Fprintln(m.out, "Enter file paths one by one. Press Enter with empty input when done.")

	var files []string
	for {
		path, err := m.ask.Text(ctx, fmt.Sprintf("File #%d (or press Enter to finish):", len(files)+1), "")
		if err != nil {
			return err
		}
		if path == "" {
			break
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() && filepath.Ext(path) == m.orch.Config().InputExt {
			files = append(files, path)
			fmt.Fprintf(m.out, "%s Added: %s\n", term.OK(), filepath.Base(path))
		} else {
			fmt.Fprintf(m.out, "%s Invalid file or not a %s file\n", term.Fail(), m.orch.Config().InputExt)
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(m.out, "%s No files selected\n", term.Warn())
		return nil
	}

	return m.merge(ctx, files, defaultMergeName)
}

func (m *Menu) convertDir(ctx context.Context) error {
	dir, err := m.ask.Text(ctx, "Select directory containing markdown files:", "")
	if err != nil || dir == "" {
		return err
	}
	recursive, err := m.ask.Confirm(ctx, "Include subdirectories?", false)
	if err != nil {
		return err
	}
	outputDir, err := m.askOutputDir(ctx)
	if err != nil {
		return err
	}

	common, err := m.ask.Confirm(ctx, "Use same author for all files?", true)
	if err != nil {
		return err
	}
	template := metadata.Metadata{}
	if common {
		author, err := m.ask.Text(ctx, "Author name:", m.orch.Config().Author)
		if err != nil {
			return err
		}
		template[metadata.KeyAuthor] = author
	}

	m.orch.BatchConvertDirectory(ctx, dir, outputDir, recursive, template)
	return nil
}

func (m *Menu) mergeDir(ctx context.Context) error {
	dir, err := m.ask.Text(ctx, "Select directory containing markdown files:", "")
	if err != nil || dir == "" {
		return err
	}
	recursive, err := m.ask.Confirm(ctx, "Include subdirectories?", false)
	if err != nil {
		return err
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fmt.Fprintf(m.out, "%s Directory not found: %s\n", term.Fail(), dir)
		return nil
	}
	files, err := convert.Discover(dir, m.orch.Config().InputExt, recursive)
	if err != nil {
		fmt.Fprintf(m.out, "%s %v\n", term.Fail(), err)
		return nil
	}
	if len(files) == 0 {
		fmt.Fprintf(m.out, "%s No %s files found in %s\n", term.Fail(), m.orch.Config().InputExt, dir)
		return nil
	}

	fmt.Fprintf(m.out, "\nFound %d file(s):\n", len(files))
	for i, f := range files {
		fmt.Fprintf(m.out, "  %d. %s\n", i+1, filepath.Base(f))
	}
	proceed, err := m.ask.Confirm(ctx, fmt.Sprintf("Merge all %d files into one ePub?", len(files)), true)
	if err != nil || !proceed {
		return err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return m.merge(ctx, files, filepath.Base(abs))
}

func (m *Menu) merge(ctx context.Context, files []string, defaultName string) error {
	name, err := m.ask.Text(ctx, "Name for merged ePub:", defaultName)
	if err != nil {
		return err
	}
	meta, err := m.collectMetadata(ctx, metadata.Metadata{metadata.KeyTitle: name})
	if err != nil {
		return err
	}
	outputDir, err := m.askOutputDir(ctx)
	if err != nil {
		return err
	}
	m.orch.MergeMany(ctx, files, name, outputDir, meta)
	return nil
}

func (m *Menu) askOutputDir(ctx context.Context) (string, error) {
	custom, err := m.ask.Confirm(ctx, "Use custom output directory?", false)
	if err != nil || !custom {
		return "", err
	}
	return m.ask.Text(ctx, "Select output directory:", "")
}

// collectMetadata asks for the publication metadata, offering values from
// defaults first. The author is required and becomes the default for later
// questions.
func (m *Menu) collectMetadata(ctx context.Context, defaults metadata.Metadata) (metadata.Metadata, error) {
	fmt.Fprintln(m.out, "\nePub Metadata Configuration")

	defaultTitle := defaults[metadata.KeyTitle]
	if defaultTitle == "" {
		defaultTitle = "Untitled"
	}
	title, err := m.ask.Text(ctx, "Book/Document title:", defaultTitle)
	if err != nil {
		return nil, err
	}
	defaultAuthor := defaults[metadata.KeyAuthor]
	if defaultAuthor == "" {
		defaultAuthor = m.orch.Config().Author
	}
	author, err := m.ask.Required(ctx, "Author name (required):", defaultAuthor, "Author name is required!")
	if err != nil {
		return nil, err
	}
	m.orch.SetAuthor(author)

	lang := defaults[metadata.KeyLang]
	if lang == "" {
		lang = m.orch.Config().Lang
	}
	meta := metadata.Metadata{
		metadata.KeyTitle:  title,
		metadata.KeyAuthor: author,
		metadata.KeyLang:   lang,
	}

	more, err := m.ask.Confirm(ctx, "Add additional metadata? (description, publisher, etc.)", false)
	if err != nil || !more {
		return meta, err
	}

	if meta[metadata.KeyDescription], err = m.ask.Text(ctx, "Description (optional):", ""); err != nil {
		return nil, err
	}
	if meta[metadata.KeyPublisher], err = m.ask.Text(ctx, "Publisher (optional):", ""); err != nil {
		return nil, err
	}
	if meta[metadata.KeyLang], err = m.ask.Ask(ctx, "Language code:", lang, fieldValidator(metadata.KeyLang)); err != nil {
		return nil, err
	}

	addDate, err := m.ask.Confirm(ctx, "Add publication date?", false)
	if err != nil {
		return nil, err
	}
	if addDate {
		if meta[metadata.KeyDate], err = m.ask.Ask(ctx, "Date (YYYY-MM-DD):", metadata.Today(), fieldValidator(metadata.KeyDate)); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// fieldValidator checks a single metadata value with the bag's rules.
func fieldValidator(key string) func(string) error {
	return func(v string) error {
		return metadata.Metadata{metadata.KeyAuthor: "-", key: v}.Validate()
	}
}
