// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides colored terminal output helpers shared by the CLI
// commands. Color is disabled automatically when stdout is not a TTY or
// when NO_COLOR is set; --no-color forces it off regardless.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Exported color handles used directly by command code (e.g. ui.Green.Println).
var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Cyan   = color.New(color.FgCyan)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// InitColors decides whether colored output is enabled for this process.
// Precedence: explicit --no-color flag, then NO_COLOR env var, then TTY
// detection on stdout.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
		return
	}
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		return
	}
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Header prints a bold section header.
func Header(title string) {
	_, _ = Bold.Printf("\n%s\n", title)
}

// SubHeader prints a bold subsection header on its own line, without the
// blank line Header prints before its title.
func SubHeader(title string) {
	_, _ = Bold.Printf("%s\n", title)
}

// Label renders a field label in bold, suitable for "%s %s" with a value.
func Label(s string) string {
	return Bold.Sprint(s)
}

// DimText renders s in faint/dim style, used for secondary detail like
// paths and durations.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText renders an integer count in cyan, used for summary statistics.
func CountText(n int) string {
	return Cyan.Sprint(n)
}

// Info prints an informational message to stderr.
func Info(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// Infof prints a formatted informational message to stderr.
func Infof(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Success prints a green success message to stderr.
func Success(msg string) {
	_, _ = Green.Fprintln(os.Stderr, msg)
}

// Successf prints a formatted green success message to stderr.
func Successf(format string, args ...interface{}) {
	_, _ = Green.Fprintf(os.Stderr, format+"\n", args...)
}

// Warning prints a yellow warning message to stderr.
func Warning(msg string) {
	_, _ = Yellow.Fprintln(os.Stderr, "warning: "+msg)
}

// Warningf prints a formatted yellow warning message to stderr.
func Warningf(format string, args ...interface{}) {
	_, _ = Yellow.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
