// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert orchestrates Markdown-to-ePub conversion. It discovers
// input files, assembles metadata, builds converter command lines, and
// reports per-file outcomes. Document processing itself is delegated to the
// external converter.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/pdiddy/md2epub/internal/history"
	"github.com/pdiddy/md2epub/internal/metadata"
	"github.com/pdiddy/md2epub/internal/pandoc"
	"github.com/pdiddy/md2epub/internal/stylesheet"
	"github.com/pdiddy/md2epub/internal/term"
	"github.com/pdiddy/md2epub/pkg/types"
)

const (
	epubMIME       = "application/epub+zip"
	mergeSeparator = "\n\n---\n\n"
	mergePattern   = "md2epub-merge-*.md"
)

// Recorder receives the outcome of every conversion attempt.
type Recorder interface {
	Record(ctx context.Context, rec history.Record) error
}

// Orchestrator runs conversions through a converter Runner and writes
// user-facing status lines to its output writer.
type Orchestrator struct {
	cfg      types.ConverterConfig
	runner   pandoc.Runner
	out      io.Writer
	recorder Recorder
	progress io.Writer
	tempDir  string
	goos     string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder logs every conversion attempt to r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithProgress renders a progress bar on w during directory batches.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) { o.progress = w }
}

// WithTempDir places merge intermediates in dir instead of the system
// temporary directory.
func WithTempDir(dir string) Option {
	return func(o *Orchestrator) { o.tempDir = dir }
}

// New returns an Orchestrator that invokes runner with settings from cfg.
// Empty cfg fields take their defaults.
func New(runner pandoc.Runner, cfg types.ConverterConfig, out io.Writer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg.WithDefaults(),
		runner: runner,
		out:    out,
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() types.ConverterConfig {
	return o.cfg
}

// SetStylesheet changes the stylesheet passed to later conversions. An empty
// path disables it.
func (o *Orchestrator) SetStylesheet(path string) {
	o.cfg.Stylesheet = path
}

// SetAuthor changes the default author used by directory batches.
func (o *Orchestrator) SetAuthor(author string) {
	o.cfg.Author = author
}

// CheckAvailable probes the converter and reports whether it can be run.
// When it cannot, installation guidance for the current platform is printed.
func (o *Orchestrator) CheckAvailable(ctx context.Context) bool {
	version, err := o.runner.Version(ctx)
	if err != nil {
		fmt.Fprintf(o.out, "%s %s is not installed or not runnable (%v)\n", term.Fail(), o.runner.Name(), err)
		fmt.Fprintln(o.out, "\nInstallation instructions:")
		fmt.Fprintf(o.out, "  %s\n", pandoc.InstallHint(o.goos))
		return false
	}
	fmt.Fprintf(o.out, "%s Converter detected: %s\n", term.OK(), version)
	return true
}

// Destination returns the output path for src: src's stem with ext, placed
// in outputDir when it is non-empty and next to src otherwise.
func Destination(src, outputDir, ext string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if outputDir != "" {
		return filepath.Join(outputDir, stem+ext)
	}
	return filepath.Join(filepath.Dir(src), stem+ext)
}

// Args builds the converter argument list for converting src into dest.
// The stylesheet flag is included only when the configured file exists.
func (o *Orchestrator) Args(src, dest string, meta metadata.Metadata) []string {
	args := []string{
		src,
		"-o", dest,
		"--toc",
		fmt.Sprintf("--toc-depth=%d", o.cfg.TOCDepth),
		fmt.Sprintf("--epub-chapter-level=%d", o.cfg.ChapterLevel),
	}
	if stylesheet.Exists(o.cfg.Stylesheet) {
		args = append(args, "--css", o.cfg.Stylesheet)
	}
	for _, pair := range meta.Pairs() {
		args = append(args, "--metadata", pair)
	}
	return args
}

// ConvertOne converts a single Markdown file. The output lands next to the
// source unless outputDir is set. It reports whether the conversion
// succeeded.
func (o *Orchestrator) ConvertOne(ctx context.Context, path, outputDir string, meta metadata.Metadata) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		fmt.Fprintf(o.out, "%s File not found: %s\n", term.Fail(), path)
		return false
	}
	if filepath.Ext(path) != o.cfg.InputExt {
		fmt.Fprintf(o.out, "%s File must have %s extension: %s\n", term.Fail(), o.cfg.InputExt, path)
		return false
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			fmt.Fprintf(o.out, "%s Cannot create output directory %s: %v\n", term.Fail(), outputDir, err)
			return false
		}
	}
	dest := Destination(path, outputDir, o.cfg.OutputExt)
	return o.run(ctx, history.OpConvert, path, []string{path}, dest, meta)
}

// MergeMany concatenates the bodies of paths, front matter removed and
// separated by horizontal rules, and converts the result into a single
// publication named outputName. The intermediate file is always removed
// before MergeMany returns.
func (o *Orchestrator) MergeMany(ctx context.Context, paths []string, outputName, outputDir string, meta metadata.Metadata) bool {
	if len(paths) == 0 {
		fmt.Fprintf(o.out, "%s No files to merge\n", term.Fail())
		return false
	}
	fmt.Fprintf(o.out, "\nMerging %d file(s)...\n", len(paths))

	tmp, err := os.CreateTemp(o.tempDir, mergePattern)
	if err != nil {
		fmt.Fprintf(o.out, "%s Cannot create intermediate file: %v\n", term.Fail(), err)
		return false
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeMerged(tmp, paths, o.out); err != nil {
		tmp.Close()
		fmt.Fprintf(o.out, "%s %v\n", term.Fail(), err)
		return false
	}
	if err := tmp.Close(); err != nil {
		fmt.Fprintf(o.out, "%s Writing intermediate file: %v\n", term.Fail(), err)
		return false
	}

	name := strings.TrimSuffix(outputName, o.cfg.OutputExt)
	var dest string
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			fmt.Fprintf(o.out, "%s Cannot create output directory %s: %v\n", term.Fail(), outputDir, err)
			return false
		}
		dest = filepath.Join(outputDir, name+o.cfg.OutputExt)
	} else {
		dest = filepath.Join(filepath.Dir(paths[0]), name+o.cfg.OutputExt)
	}

	return o.run(ctx, history.OpMerge, tmpPath, paths, dest, meta)
}

func writeMerged(w io.Writer, paths []string, log io.Writer) error {
	for i, p := range paths {
		fmt.Fprintf(log, "  [%d/%d] Adding: %s\n", i+1, len(paths), filepath.Base(p))

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		if _, err := w.Write(metadata.StripFrontMatter(data)); err != nil {
			return fmt.Errorf("writing intermediate file: %w", err)
		}
		if i < len(paths)-1 {
			if _, err := io.WriteString(w, mergeSeparator); err != nil {
				return fmt.Errorf("writing intermediate file: %w", err)
			}
		}
	}
	return nil
}

// run invokes the converter on input and reports the outcome against the
// user-visible sources.
func (o *Orchestrator) run(ctx context.Context, op, input string, sources []string, dest string, meta metadata.Metadata) bool {
	label := filepath.Base(sources[0])
	if op == history.OpMerge {
		label = fmt.Sprintf("%d merged file(s)", len(sources))
	}

	err := o.runner.Run(ctx, o.Args(input, dest, meta))
	if err == nil {
		err = o.verify(dest)
	}

	rec := history.Record{
		Operation:   op,
		Sources:     sources,
		Destination: dest,
		Succeeded:   err == nil,
	}

	if err != nil {
		fmt.Fprintf(o.out, "%s Error converting %s\n", term.Fail(), label)
		var exitErr *pandoc.ExitError
		if errors.As(err, &exitErr) {
			rec.Diagnostic = exitErr.Stderr
			if exitErr.Stderr != "" {
				fmt.Fprintln(o.out, exitErr.Stderr)
			}
		} else {
			rec.Diagnostic = err.Error()
			fmt.Fprintln(o.out, err)
		}
		o.record(ctx, rec)
		return false
	}

	size := ""
	if info, statErr := os.Stat(dest); statErr == nil {
		size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
	}
	fmt.Fprintf(o.out, "%s Converted: %s → %s%s\n", term.OK(), label, filepath.Base(dest), size)
	o.record(ctx, rec)
	return true
}

// verify checks that the converter actually wrote dest. A file that does
// not look like an ePub only produces a warning.
func (o *Orchestrator) verify(dest string) error {
	info, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("%s exited cleanly but %s was not written", o.runner.Name(), dest)
	}
	if info.Size() == 0 {
		return nil
	}
	mt, err := mimetype.DetectFile(dest)
	if err == nil && !mt.Is(epubMIME) {
		fmt.Fprintf(o.out, "%s %s does not look like an ePub (detected %s)\n", term.Warn(), filepath.Base(dest), mt.String())
	}
	return nil
}

func (o *Orchestrator) record(ctx context.Context, rec history.Record) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, rec); err != nil {
		fmt.Fprintf(o.out, "%s history not updated: %v\n", term.Warn(), err)
	}
}
