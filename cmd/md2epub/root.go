// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md2epub/internal/convert"
	"github.com/pdiddy/md2epub/internal/manifest"
	"github.com/pdiddy/md2epub/internal/menu"
	"github.com/pdiddy/md2epub/internal/metadata"
	"github.com/pdiddy/md2epub/internal/pandoc"
	"github.com/pdiddy/md2epub/internal/prompt"
	"github.com/pdiddy/md2epub/internal/stylesheet"
)

var (
	errConverterMissing = errors.New("converter not available")
	errConversionFailed = errors.New("conversion failed")
)

// request holds the command-line inputs that select a conversion.
type request struct {
	Input     string
	Dir       string
	OutputDir string
	Title     string
	Manifest  string
	Merge     bool
	Recursive bool
}

// interactive reports whether no input was named, which selects the menu.
func (r request) interactive() bool {
	return r.Input == "" && r.Dir == "" && r.Manifest == ""
}

func requestFromFlags(cmd *cobra.Command, args []string) request {
	var r request
	if len(args) > 0 {
		r.Input = args[0]
	}
	r.Dir, _ = cmd.Flags().GetString("dir")
	r.OutputDir, _ = cmd.Flags().GetString("output")
	r.Title, _ = cmd.Flags().GetString("title")
	r.Manifest, _ = cmd.Flags().GetString("manifest")
	r.Merge, _ = cmd.Flags().GetBool("merge")
	r.Recursive, _ = cmd.Flags().GetBool("recursive")
	return r
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cssPath := stylesheetPath(cfg)

	if createCSS, _ := cmd.Flags().GetBool("create-css"); createCSS {
		if err := stylesheet.Write(cssPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Optimized CSS created: %s\n", cssPath)
		return nil
	}
	if cmd.Flags().Changed("css") && !stylesheet.Exists(cssPath) {
		fmt.Fprintf(cmd.ErrOrStderr(), "CSS file not found: %s, proceeding without CSS\n", cssPath)
	}

	req := requestFromFlags(cmd, args)

	var progress io.Writer
	if !req.interactive() {
		progress = cmd.ErrOrStderr()
	}
	sess, err := newSession(cfg, pandoc.New(cfg.Converter), out, progress)
	if err != nil {
		return err
	}
	defer sess.Close()

	if req.interactive() {
		fmt.Fprintln(out, "Markdown to ePub Converter")
		fmt.Fprintln(out)
	}
	if !sess.orch.CheckAvailable(ctx) {
		return errConverterMissing
	}

	if req.interactive() {
		ask := prompt.New(cmd.InOrStdin(), out)
		defer ask.Close()
		return menu.New(sess.orch, ask, out, cssPath).Start(ctx)
	}
	return runCLI(ctx, sess.orch, req, out)
}

// runCLI performs the non-interactive conversion selected by req.
func runCLI(ctx context.Context, orch *convert.Orchestrator, req request, out io.Writer) error {
	cfg := orch.Config()
	ok := true

	switch {
	case req.Manifest != "":
		m, err := manifest.Read(req.Manifest)
		if err != nil {
			return err
		}
		outputDir := req.OutputDir
		if outputDir == "" {
			outputDir = m.ResolvedOutputDir()
		}
		meta := m.Metadata()
		if !meta.Has(metadata.KeyAuthor) && cfg.Author != "" {
			meta[metadata.KeyAuthor] = cfg.Author
		}
		if !meta.Has(metadata.KeyLang) {
			meta[metadata.KeyLang] = cfg.Lang
		}
		ok = orch.MergeMany(ctx, m.Paths(), m.OutputName(), outputDir, meta)

	case req.Dir != "" && req.Merge:
		files, err := convert.Discover(req.Dir, cfg.InputExt, req.Recursive)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no %s files found in %s", cfg.InputExt, req.Dir)
		}
		name := req.Title
		if name == "" {
			abs, err := filepath.Abs(req.Dir)
			if err != nil {
				abs = req.Dir
			}
			name = filepath.Base(abs)
		}
		meta := baseMetadata(cfg.Author, cfg.Lang)
		meta[metadata.KeyTitle] = name
		ok = orch.MergeMany(ctx, files, name, req.OutputDir, meta)

	case req.Dir != "":
		ok = runBatch(ctx, orch, req.Dir, req)

	default:
		info, err := os.Stat(req.Input)
		if err != nil {
			return fmt.Errorf("input not found: %s", req.Input)
		}
		if info.IsDir() {
			ok = runBatch(ctx, orch, req.Input, req)
			break
		}
		if filepath.Ext(req.Input) != cfg.InputExt {
			return fmt.Errorf("input must be a %s file or a directory: %s", cfg.InputExt, req.Input)
		}
		meta := metadata.FromFile(req.Input)
		for k, v := range baseMetadata(cfg.Author, cfg.Lang) {
			if !meta.Has(k) || k == metadata.KeyAuthor {
				meta[k] = v
			}
		}
		if req.Title != "" {
			meta[metadata.KeyTitle] = req.Title
		}
		ok = orch.ConvertOne(ctx, req.Input, req.OutputDir, meta)
	}

	if ctx.Err() != nil {
		fmt.Fprintln(out, "\nInterrupted by user")
		return ctx.Err()
	}
	if !ok {
		return errConversionFailed
	}
	return nil
}

func runBatch(ctx context.Context, orch *convert.Orchestrator, dir string, req request) bool {
	cfg := orch.Config()
	template := baseMetadata(cfg.Author, cfg.Lang)
	if req.Title != "" {
		template[metadata.KeyTitle] = req.Title
	}
	res := orch.BatchConvertDirectory(ctx, dir, req.OutputDir, req.Recursive, template)
	return res.Total > 0 && !res.HasFailures()
}

// baseMetadata returns the bag for the non-empty author and lang values.
func baseMetadata(author, lang string) metadata.Metadata {
	meta := metadata.Metadata{}
	if author != "" {
		meta[metadata.KeyAuthor] = author
	}
	if lang != "" {
		meta[metadata.KeyLang] = lang
	}
	return meta
}
