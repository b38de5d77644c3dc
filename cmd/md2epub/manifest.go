// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md2epub/internal/convert"
	"github.com/pdiddy/md2epub/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Manage YAML book manifests",
	Long: `A manifest lists the Markdown files of a book in reading order together
with its metadata. Merge it with md2epub --manifest book.yaml.`,
}

var manifestInitCmd = &cobra.Command{
	Use:   "init DIR",
	Short: "Write a manifest listing the Markdown files in DIR",
	Args:  cobra.ExactArgs(1),
	RunE:  runManifestInit,
}

func runManifestInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	dir := args[0]
	recursive, _ := cmd.Flags().GetBool("recursive")
	force, _ := cmd.Flags().GetBool("force")
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = filepath.Join(dir, "book.yaml")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	files, err := convert.Discover(dir, cfg.InputExt, recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found in %s", cfg.InputExt, dir)
	}

	m, err := manifest.FromDirectory(dir, files, cfg.Author)
	if err != nil {
		return err
	}
	m.Lang = cfg.Lang
	if err := manifest.Write(path, m); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d file(s)\n", path, len(files))
	return nil
}

func init() {
	manifestInitCmd.Flags().StringP("file", "f", "", "manifest path (default: DIR/book.yaml)")
	manifestInitCmd.Flags().BoolP("recursive", "r", false, "include subdirectories")
	manifestInitCmd.Flags().Bool("force", false, "overwrite an existing manifest")

	manifestCmd.AddCommand(manifestInitCmd)
	rootCmd.AddCommand(manifestCmd)
}
