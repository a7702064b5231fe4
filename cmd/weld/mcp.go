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

// MCP/JSON-RPC transport (SPEC_FULL.md §5): a separate front end that
// reads line-delimited JSON-RPC requests from stdin and dispatches them
// straight to the engine, bypassing the CLI's flag parsing (which exits
// the process on error — unacceptable for a long-lived server). Grounded
// directly on cmd/cie/mcp.go's jsonRPCRequest/jsonRPCResponse envelope,
// mcpTool/InputSchema shape, and bufio.Scanner stdin loop, re-targeted to
// expose weld's ten subcommands as MCP tools instead of CIE's code-search
// tools.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/pkg/batch"
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
	"github.com/kraklabs/weld/pkg/rast"
)

const (
	mcpVersion    = "1.0.0"
	mcpServerName = "weld"
)

const weldInstructions = `weld is a bulk, AST-aware refactoring engine for Rust source. It parses
files with Tree-sitter, locates syntactic constructs by semantic category
(not by textual pattern), and applies surgical or whole-definition
rewrites with a reversible run ledger.

Every mutating tool defaults to a dry-run preview; pass apply=true to
write files and record a ledger run. Use weld_history/weld_revert to
inspect and undo a committed run.`

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type mcpServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type mcpCapabilities struct {
	Tools map[string]any `json:"tools,omitempty"`
}

type mcpInitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    mcpCapabilities `json:"capabilities"`
	ServerInfo      mcpServerInfo   `json:"serverInfo"`
	Instructions    string          `json:"instructions"`
}

type mcpTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type mcpToolsListResult struct {
	Tools []mcpTool `json:"tools"`
}

type mcpToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type mcpToolResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// weldMCPServer holds the state a tool call needs: the project config
// (for default excludes / state directory) resolved once at startup.
type weldMCPServer struct {
	configPath string
	cfg        Config
}

// runMCPServer starts weld's MCP server: JSON-RPC 2.0 requests in on
// stdin, one JSON response per line on stdout.
func runMCPServer(configPath string) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		if ue, ok := err.(*wErrors.UserError); ok {
			fmt.Fprintln(os.Stderr, ue.Format(false))
		}
		cfg = DefaultConfig()
	}
	server := &weldMCPServer{configPath: configPath, cfg: cfg}
	serveMCPLoop(server)
}

func serveMCPLoop(server *weldMCPServer) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			fmt.Fprintf(os.Stderr, "invalid MCP request: %v\n", err)
			continue
		}

		resp := server.handleRequest(context.Background(), req)
		if resp.ID == nil && resp.Result == nil && resp.Error == nil {
			continue
		}

		data, err := json.Marshal(resp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot encode MCP response: %v\n", err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\n", data)
	}
}

func (s *weldMCPServer) handleRequest(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: mcpInitializeResult{
				ProtocolVersion: "2024-11-05",
				Capabilities:    mcpCapabilities{Tools: map[string]any{"listChanged": true}},
				ServerInfo:      mcpServerInfo{Name: mcpServerName, Version: mcpVersion},
				Instructions:    weldInstructions,
			},
		}
	case "notifications/initialized":
		return jsonRPCResponse{}
	case "tools/list":
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: mcpToolsListResult{Tools: s.getTools()}}
	case "tools/call":
		var params mcpToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: "Invalid params", Data: err.Error()}}
		}
		result := s.handleToolCall(ctx, params)
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	default:
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "Method not found", Data: req.Method}}
	}
}

type mcpHandler func(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error)

var mcpToolHandlers = map[string]mcpHandler{
	"weld_find":      mcpFind,
	"weld_add":       mcpMutate(opKindAdd),
	"weld_remove":    mcpMutate(opKindRemove),
	"weld_update":    mcpMutate(opKindUpdate),
	"weld_rename":    mcpRename,
	"weld_transform": mcpTransform,
	"weld_batch":     mcpBatch,
	"weld_history":   mcpHistory,
	"weld_revert":    mcpRevert,
	"weld_clean":     mcpClean,
}

func (s *weldMCPServer) handleToolCall(ctx context.Context, params mcpToolCallParams) *mcpToolResult {
	handler, ok := mcpToolHandlers[params.Name]
	if !ok {
		return &mcpToolResult{Content: []mcpContent{{Type: "text", Text: "Unknown tool: " + params.Name}}, IsError: true}
	}
	text, err := handler(ctx, s, params.Arguments)
	if err != nil {
		msg := err.Error()
		if ue, ok := err.(*wErrors.UserError); ok {
			msg = ue.Format(true)
		}
		return &mcpToolResult{Content: []mcpContent{{Type: "text", Text: msg}}, IsError: true}
	}
	return &mcpToolResult{Content: []mcpContent{{Type: "text", Text: text}}}
}

// --- argument helpers -------------------------------------------------

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// --- tool implementations ----------------------------------------------

func mcpCollectFiles(s *weldMCPServer, args map[string]any) ([]string, error) {
	paths := argStringSlice(args, "paths")
	if len(paths) == 0 {
		return nil, wErrors.NewInputError("Missing paths", "The \"paths\" argument is required", "Pass an array of files, directories, or globs", nil)
	}
	excludes := append(append([]string{}, s.cfg.Excludes...), argStringSlice(args, "exclude")...)
	return batch.CollectFiles(paths, excludes)
}

func mcpFind(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	files, err := mcpCollectFiles(s, args)
	if err != nil {
		return "", err
	}
	parser := rast.NewParser()
	kind := argString(args, "kind")
	name := argString(args, "name")
	content := argString(args, "content")

	type fileMatches struct {
		Path    string         `json:"file_path"`
		Matches []engine.Match `json:"matches"`
	}
	var all []fileMatches
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		tree, err := parser.Parse(ctx, path, source)
		if err != nil {
			continue
		}
		ms := engine.Inspect(tree, engine.InspectQuery{Categories: rast.ExpandKind(kind), Name: name, ContentFilter: content})
		tree.Close()
		if len(ms) > 0 {
			all = append(all, fileMatches{Path: path, Matches: ms})
		}
	}
	data, err := json.Marshal(all)
	return string(data), err
}

func mcpMutate(kind opKind) mcpHandler {
	return func(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
		mf := &mutatingFlags{
			paths:    argStringSlice(args, "paths"),
			excludes: argStringSlice(args, "exclude"),
			apply:    argBool(args, "apply"),
			where:    argString(args, "where"),
			limit:    argInt(args, "limit"),
			position: argString(args, "position"),
			editMode: argString(args, "edit_mode"),
		}
		op, err := buildOperation(kind, mf,
			argString(args, "struct"), argString(args, "field_name"), argString(args, "field_type"), argString(args, "field_value"),
			argBool(args, "literal_only"), argString(args, "enum"), argString(args, "variant"), argString(args, "variant_name"),
			argString(args, "method"), argString(args, "derive"), argString(args, "use"), argString(args, "match_arm"),
			argString(args, "function"), argBool(args, "auto_detect"))
		if err != nil {
			return "", err
		}
		return mcpRunOperation(ctx, s, op, mf, verbName(kind))
	}
}

func mcpTransform(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	action, ok := engine.ParseTransformAction(argString(args, "action"))
	if !ok {
		return "", wErrors.NewInputError("Invalid action", "must be comment, remove, or replace:<text>", "", nil)
	}
	mf := &mutatingFlags{
		paths:    argStringSlice(args, "paths"),
		excludes: argStringSlice(args, "exclude"),
		apply:    argBool(args, "apply"),
		where:    argString(args, "where"),
		limit:    argInt(args, "limit"),
	}
	op := engine.Operation{
		Type:          engine.OpTransform,
		Kind:          argString(args, "kind"),
		NameFilter:    argString(args, "name"),
		ContentFilter: argString(args, "content"),
		Action:        action,
		Apply:         mf.apply,
		Where:         mf.where,
		Limit:         mf.limit,
	}
	return mcpRunOperation(ctx, s, op, mf, "transform")
}

func mcpRename(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	mf := &mutatingFlags{
		paths:    argStringSlice(args, "paths"),
		excludes: argStringSlice(args, "exclude"),
		apply:    argBool(args, "apply"),
		where:    argString(args, "where"),
		limit:    argInt(args, "limit"),
	}
	files, err := mcpCollectFiles(s, args)
	if err != nil {
		return "", err
	}

	opType := engine.OpRenameFunction
	enumName := argString(args, "enum")
	switch explicit := argString(args, "kind"); explicit {
	case "function":
		opType = engine.OpRenameFunction
	case "enum-variant":
		opType = engine.OpRenameEnumVariant
	case "":
		if enumName != "" {
			opType = engine.OpRenameEnumVariant
		} else {
			t, err := mcpDetectRenameKind(ctx, files, argString(args, "old"))
			if err != nil {
				return "", err
			}
			opType = t
		}
	default:
		return "", wErrors.NewInputError("Invalid kind", "must be function or enum-variant", "", nil)
	}

	op := engine.Operation{
		Type:          opType,
		OldName:       argString(args, "old"),
		NewName:       argString(args, "new"),
		EnumName:      enumName,
		CanonicalPath: argString(args, "canonical_path"),
		Apply:         mf.apply,
		Where:         mf.where,
		Limit:         mf.limit,
	}
	return mcpRunOperationFiles(ctx, s, op, files, mf.apply, "rename")
}

// mcpDetectRenameKind is handleToolCall's non-exiting counterpart to
// cmd/weld/rename.go's detectRenameKind: an ambiguous bare target becomes
// an error returned to the caller instead of a process exit, since an MCP
// server must survive a single bad request.
func mcpDetectRenameKind(ctx context.Context, files []string, oldName string) (engine.OperationType, error) {
	parser := rast.NewParser()
	foundFunction, foundVariant := false, false
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		tree, err := parser.Parse(ctx, path, source)
		if err != nil {
			continue
		}
		if amb := engine.DetectRenameAmbiguity(tree, oldName); len(amb) > 1 {
			tree.Close()
			return "", engine.AmbiguityError(oldName, amb)
		}
		if len(engine.Inspect(tree, engine.InspectQuery{Categories: []rast.Category{rast.CategoryFunctionDefinition}, Name: oldName})) > 0 {
			foundFunction = true
		}
		if len(engine.Inspect(tree, engine.InspectQuery{Categories: []rast.Category{rast.CategoryUnionVariantUsage}, Name: oldName})) > 0 {
			foundVariant = true
		}
		tree.Close()
	}
	if foundVariant && !foundFunction {
		return engine.OpRenameEnumVariant, nil
	}
	return engine.OpRenameFunction, nil
}

func mcpBatch(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	specPath := argString(args, "spec")
	if specPath == "" {
		return "", wErrors.NewInputError("Missing spec", "The \"spec\" argument is required", "Pass a path to a JSON or YAML batch spec file", nil)
	}
	spec, err := batch.LoadSpec(specPath)
	if err != nil {
		return "", err
	}
	if argBool(args, "apply") {
		for i := range spec.Operations {
			spec.Operations[i].Apply = true
		}
	}
	var store *ledger.Store
	if anyApply(spec) {
		st, err := openStore(s.cfg)
		if err != nil {
			return "", err
		}
		store = st
	}
	runner := batch.NewRunner(store, "batch")
	results, err := runner.RunBatch(ctx, spec, s.cfg.Excludes)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(results)
	return string(data), err
}

func anyApply(spec *engine.BatchSpec) bool {
	for _, op := range spec.Operations {
		if op.Apply {
			return true
		}
	}
	return false
}

func mcpHistory(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	store, err := openStore(s.cfg)
	if err != nil {
		return "", err
	}
	limit := argInt(args, "limit")
	entries, err := store.ShowHistory(limit)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(entries)
	return string(data), err
}

func mcpRevert(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	runID := argString(args, "run_id")
	if runID == "" {
		return "", wErrors.NewInputError("Missing run_id", "The \"run_id\" argument is required", "", nil)
	}
	store, err := openStore(s.cfg)
	if err != nil {
		return "", err
	}
	if err := store.RevertRun(runID, argBool(args, "force")); err != nil {
		return "", err
	}
	weldMetrics.operationsReverted.Inc()
	return fmt.Sprintf("Reverted run %s", runID), nil
}

func mcpClean(ctx context.Context, s *weldMCPServer, args map[string]any) (string, error) {
	store, err := openStore(s.cfg)
	if err != nil {
		return "", err
	}
	keepDays := argInt(args, "keep_days")
	removed, err := store.CleanOldState(keepDays)
	if err != nil {
		return "", err
	}
	size, err := store.Size()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %d run(s) older than %d day(s). State directory now %d bytes.", removed, keepDays, size), nil
}

func mcpRunOperation(ctx context.Context, s *weldMCPServer, op engine.Operation, mf *mutatingFlags, command string) (string, error) {
	if len(mf.paths) == 0 {
		return "", wErrors.NewInputError("Missing paths", "The \"paths\" argument is required", "Pass an array of files, directories, or globs", nil)
	}
	excludes := append(append([]string{}, s.cfg.Excludes...), mf.excludes...)
	files, err := batch.CollectFiles(mf.paths, excludes)
	if err != nil {
		return "", err
	}
	return mcpRunOperationFiles(ctx, s, op, files, op.Apply, command)
}

func mcpRunOperationFiles(ctx context.Context, s *weldMCPServer, op engine.Operation, files []string, apply bool, command string) (string, error) {
	var store *ledger.Store
	if apply {
		st, err := openStore(s.cfg)
		if err != nil {
			return "", err
		}
		store = st
	}
	runner := batch.NewRunner(store, command)
	res, err := runner.ApplyOperation(ctx, op, files)
	if err != nil {
		return "", err
	}
	for _, fr := range res.Files {
		if fr.Changed && apply {
			observeMutation(fr.Duration)
		}
	}
	if res.RunID != "" {
		weldMetrics.operationsApplied.Inc()
	}
	data, err := json.Marshal(res)
	return string(data), err
}

// getTools describes every MCP tool's JSON-Schema input shape, mirroring
// cmd/cie/mcp.go's mcpTool+InputSchema convention.
func (s *weldMCPServer) getTools() []mcpTool {
	strArr := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	pathsProp := func(extra map[string]any) map[string]any {
		props := map[string]any{
			"paths":   strArr,
			"exclude": strArr,
			"apply":   map[string]any{"type": "boolean", "description": "Write changes and record a ledger run (default: dry-run preview)"},
			"where":   map[string]any{"type": "string"},
			"limit":   map[string]any{"type": "integer"},
		}
		for k, v := range extra {
			props[k] = v
		}
		return map[string]any{"type": "object", "properties": props, "required": []string{"paths"}}
	}
	str := map[string]any{"type": "string"}
	boolT := map[string]any{"type": "boolean"}

	return []mcpTool{
		{Name: "weld_find", Description: "Query the AST for matches by category/name/content.",
			InputSchema: pathsProp(map[string]any{"kind": str, "name": str, "content": str})},
		{Name: "weld_add", Description: "Add a struct field, enum variant, match arm, impl method, derive, or use.",
			InputSchema: pathsProp(map[string]any{
				"struct": str, "enum": str, "field_name": str, "field_type": str, "field_value": str,
				"variant": str, "method": str, "derive": str, "use": str, "match_arm": str,
				"function": str, "auto_detect": boolT, "position": str, "edit_mode": str,
			})},
		{Name: "weld_remove", Description: "Remove a struct field, enum variant, match arm, or derive.",
			InputSchema: pathsProp(map[string]any{
				"struct": str, "enum": str, "field_name": str, "variant_name": str, "derive": str,
				"match_arm": str, "function": str,
			})},
		{Name: "weld_update", Description: "Update a struct field, enum variant, or match arm body.",
			InputSchema: pathsProp(map[string]any{
				"struct": str, "enum": str, "field_name": str, "field_type": str, "variant": str,
				"variant_name": str, "match_arm": str, "function": str,
			})},
		{Name: "weld_rename", Description: "Rename a function or enum variant, resolved by import path.",
			InputSchema: pathsProp(map[string]any{
				"old": str, "new": str, "enum": str, "canonical_path": str, "kind": str,
			})},
		{Name: "weld_transform", Description: "Comment out, remove, or replace matched nodes in bulk.",
			InputSchema: pathsProp(map[string]any{"kind": str, "name": str, "content": str, "action": str})},
		{Name: "weld_batch", Description: "Run a declarative JSON/YAML list of operations.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{"spec": str, "apply": boolT}, "required": []string{"spec"}}},
		{Name: "weld_history", Description: "Show the run ledger.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{"limit": map[string]any{"type": "integer"}}}},
		{Name: "weld_revert", Description: "Revert a previously applied run.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{"run_id": str, "force": boolT}, "required": []string{"run_id"}}},
		{Name: "weld_clean", Description: "Prune old ledger state.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{"keep_days": map[string]any{"type": "integer"}}}},
	}
}
