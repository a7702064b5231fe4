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

// Package main implements the weld CLI: a bulk, AST-aware refactoring
// engine for Rust source.
//
// Usage:
//
//	weld find --kind record --paths src/ --name Config
//	weld add --paths src/ --struct Config --field-name timeout --field-type u32 --apply
//	weld rename --paths src/ --old Draft --new Pending --apply
//	weld batch --spec ops.yaml --apply
//	weld --mcp                Start as MCP server (JSON-RPC over stdio)
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/weld/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the flags that apply regardless of subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		mcpMode     = flag.Bool("mcp", false, "Start as MCP server (JSON-RPC over stdio)")
		configPath  = flag.StringP("config", "c", "", "Path to .weld/project.yaml (default: nearest .weld/project.yaml walking up from the current directory)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing global flags at the first non-flag argument so
	// per-subcommand flags (e.g. "add --struct Config") reach the
	// subcommand's own flag set instead of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `weld - bulk, AST-aware Rust refactoring engine

weld parses Rust source with Tree-sitter, lets you query it by semantic
category, and applies surgical or whole-definition rewrites with a
reversible run ledger.

Usage:
  weld <command> [options]

Commands:
  find       Query the AST for matches by category/name/content
  add        Add a struct field, enum variant, match arm, impl method, derive, or use
  remove     Remove a struct field, enum variant, match arm, or derive
  update     Update a struct field, enum variant, or match arm body
  rename     Rename a function or enum variant, resolved by import path
  transform  Comment out, remove, or replace matched nodes in bulk
  batch      Run a declarative JSON/YAML list of operations
  history    Show the run ledger
  revert     Revert a previously applied run
  clean      Prune old ledger state

Global Options:
  --json            Output in JSON format
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output
  --mcp             Start as MCP server (JSON-RPC over stdio)
  -c, --config      Path to .weld/project.yaml
  -V, --version     Show version and exit

Examples:
  weld find --kind record --paths src/ --name Config
  weld add --paths src/ --struct Config --field-name timeout --field-type u32 --apply
  weld rename --paths src/ --old Draft --new Pending --apply
  weld batch --spec ops.yaml --apply
  weld history
  weld revert <run-id>

For detailed command help: weld <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("weld version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet so progress bars never corrupt a
	// machine-readable stream.
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	if *mcpMode {
		runMCPServer(*configPath)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "find":
		runFind(cmdArgs, *configPath, globals)
	case "add":
		runMutate(opKindAdd, cmdArgs, *configPath, globals)
	case "remove":
		runMutate(opKindRemove, cmdArgs, *configPath, globals)
	case "update":
		runMutate(opKindUpdate, cmdArgs, *configPath, globals)
	case "rename":
		runRename(cmdArgs, *configPath, globals)
	case "transform":
		runTransform(cmdArgs, *configPath, globals)
	case "batch":
		runBatch(cmdArgs, *configPath, globals)
	case "history":
		runHistory(cmdArgs, *configPath, globals)
	case "revert":
		runRevert(cmdArgs, *configPath, globals)
	case "clean":
		runClean(cmdArgs, *configPath, globals)
	case "serve":
		os.Exit(runServe(cmdArgs))
	case "add-struct-field", "update-struct-field", "remove-struct-field",
		"add-struct-literal-field", "add-derive", "add-impl-method", "add-use":
		runLegacy(command, cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
