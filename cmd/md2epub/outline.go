// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md2epub/internal/outline"
)

var outlineCmd = &cobra.Command{
	Use:   "outline FILE",
	Short: "Preview the chapters and table of contents of a Markdown file",
	Long: `Outline lists the headings that reach the ePub table of contents and
marks (§) those that start a new chapter, using the configured TOC depth and
chapter level. Nothing is converted.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	headings, err := outline.Headings(source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	chapters := outline.Chapters(headings, cfg.ChapterLevel, outline.LeadingContent(source))
	fmt.Fprintf(out, "%s: %d chapter(s), %d heading(s), toc depth %d, chapter level %d\n\n",
		args[0], chapters, len(headings), cfg.TOCDepth, cfg.ChapterLevel)
	outline.Render(out, headings, cfg.TOCDepth, cfg.ChapterLevel)
	return nil
}

func init() {
	outlineCmd.Flags().Int("toc-depth", 0, "override the configured TOC depth")
	outlineCmd.Flags().Int("chapter-level", 0, "override the configured chapter level")
	_ = viper.BindPFlag("toc_depth", outlineCmd.Flags().Lookup("toc-depth"))
	_ = viper.BindPFlag("chapter_level", outlineCmd.Flags().Lookup("chapter-level"))

	rootCmd.AddCommand(outlineCmd)
}
