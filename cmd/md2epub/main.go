// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the md2epub CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md2epub/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the md2epub CLI.
var rootCmd = &cobra.Command{
	Use:   "md2epub [file.md | directory]",
	Short: "Convert Markdown files to ePub with pandoc",
	Long: `md2epub converts Markdown files to ePub publications by driving pandoc.
It converts single files, converts every file in a directory, or merges
several files into one publication with a navigable table of contents.

Run without arguments for the interactive menu.`,
	Example: `  md2epub
  md2epub notes.md
  md2epub notes.md --title "My Book" --author "John Doe"
  md2epub --dir ./docs --output ./ebooks
  md2epub --dir ./chapters --merge --title "Complete Book" --author "Jane Doe"
  md2epub --manifest book.yaml
  md2epub --create-css`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runRoot,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./md2epub.yaml or ~/.config/md2epub/md2epub.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")

	f := rootCmd.Flags()
	f.StringP("dir", "d", "", "directory containing Markdown files")
	f.StringP("output", "o", "", "output directory for ePub files")
	f.StringP("css", "c", "", "CSS file to style the ePub")
	f.Bool("create-css", false, "create the default CSS file and exit")
	f.BoolP("recursive", "r", false, "include subdirectories")
	f.StringP("author", "a", "", "author name")
	f.StringP("title", "t", "", "book title")
	f.BoolP("merge", "m", false, "merge all files into a single ePub (with --dir)")
	f.String("manifest", "", "YAML book manifest listing files to merge")

	_ = viper.BindPFlag("author", f.Lookup("author"))
	_ = viper.BindPFlag("css", f.Lookup("css"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("md2epub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "md2epub"))
		}
	}

	setConfigDefaults(viper.GetViper())

	viper.SetEnvPrefix("MD2EPUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setConfigDefaults registers every configuration key so environment
// variables are honored when unmarshaling.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("pandoc", types.DefaultConverter)
	v.SetDefault("toc_depth", types.DefaultTOCDepth)
	v.SetDefault("chapter_level", types.DefaultChapterLevel)
	v.SetDefault("css", "")
	v.SetDefault("author", "")
	v.SetDefault("lang", types.DefaultLang)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", types.DefaultHistoryPath)
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
