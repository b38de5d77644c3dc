// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stylesheet provides the default ePub stylesheet.
package stylesheet

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed default.css
var defaultCSS []byte

// Default returns the embedded stylesheet content.
func Default() []byte {
	return append([]byte(nil), defaultCSS...)
}

// Write writes the default stylesheet to path, replacing any existing file
// and creating parent directories as needed.
func Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, defaultCSS, 0o644); err != nil {
		return fmt.Errorf("writing stylesheet %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
