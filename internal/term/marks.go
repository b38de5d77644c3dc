// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package term holds the status marks printed before user-facing lines.
// Color is dropped automatically when output is not a terminal.
package term

import "github.com/fatih/color"

// OK marks a completed step.
func OK() string { return color.GreenString("✓") }

// Fail marks a failed step or rejected answer.
func Fail() string { return color.RedString("✗") }

// Warn marks a non-fatal problem.
func Warn() string { return color.YellowString("⚠") }
