// Package mcp exposes the timeline over the Model Context Protocol so an
// assistant can inspect and restore its own file history.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/ccrewind/internal/core/checkpoint"
	"github.com/neilberkman/ccrewind/internal/core/config"
	"github.com/neilberkman/ccrewind/internal/core/diffengine"
	"github.com/neilberkman/ccrewind/internal/core/discover"
	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/restore"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

// ListCheckpointsArgs defines arguments for the list_checkpoints tool
type ListCheckpointsArgs struct {
	Path  string `json:"path,omitempty" jsonschema:"description=Only checkpoints touching this file"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Max checkpoints to return (default: 20)"`
}

// ReconstructFileArgs defines arguments for the reconstruct_file tool
type ReconstructFileArgs struct {
	Path string `json:"path" jsonschema:"description=Absolute path of the file,required"`
	At   string `json:"at,omitempty" jsonschema:"description=Event uuid or prefix; latest state when omitted"`
}

// DiffFileArgs defines arguments for the diff_file tool
type DiffFileArgs struct {
	Path string `json:"path" jsonschema:"description=Absolute path of the file,required"`
	At   string `json:"at,omitempty" jsonschema:"description=Event uuid or prefix; latest state when omitted"`
}

// RestoreFileArgs defines arguments for the restore_file tool
type RestoreFileArgs struct {
	Path string `json:"path" jsonschema:"description=Absolute path of the file,required"`
	At   string `json:"at" jsonschema:"description=Event uuid or prefix to restore to,required"`
}

// CheckpointInfo is one checkpoint in tool output
type CheckpointInfo struct {
	UUID      string `json:"uuid"`
	Trigger   string `json:"trigger,omitempty"`
	Path      string `json:"path"`
	Operation string `json:"operation"`
	Timestamp string `json:"timestamp"`
	Prompt    string `json:"prompt,omitempty"`
}

// StartServer serves the MCP tools over stdio for one project
func StartServer(project string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	projectsDir := cfg.ProjectsDir
	if projectsDir == "" {
		projectsDir, err = discover.DefaultProjectsDir()
		if err != nil {
			return err
		}
	}
	logDir := discover.ProjectLogDir(projectsDir, project)

	s := server.NewMCPServer(
		"ccrewind",
		"1.0.0",
	)

	listTool := mcp.NewTool("list_checkpoints",
		mcp.WithDescription("List recoverable checkpoints: file mutations from this project's Claude Code history, newest first, each with the human prompt that triggered it."),
		mcp.WithString("path",
			mcp.Description("Only checkpoints touching this file")),
		mcp.WithNumber("limit",
			mcp.Description("Max checkpoints to return (default: 20)")),
	)
	s.AddTool(listTool, makeListCheckpointsHandler(logDir))

	reconstructTool := mcp.NewTool("reconstruct_file",
		mcp.WithDescription("Rebuild a file's content as of a past event without touching disk"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file")),
		mcp.WithString("at",
			mcp.Description("Event uuid or prefix; latest logged state when omitted")),
	)
	s.AddTool(reconstructTool, makeReconstructHandler(logDir))

	diffTool := mcp.NewTool("diff_file",
		mcp.WithDescription("Unified diff between a past state of a file and what is on disk now"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file")),
		mcp.WithString("at",
			mcp.Description("Event uuid or prefix; latest logged state when omitted")),
	)
	s.AddTool(diffTool, makeDiffHandler(logDir, cfg))

	restoreTool := mcp.NewTool("restore_file",
		mcp.WithDescription("Restore a file on disk to its state at a past event. The current file is backed up first."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file")),
		mcp.WithString("at",
			mcp.Required(),
			mcp.Description("Event uuid or prefix to restore to")),
	)
	s.AddTool(restoreTool, makeRestoreHandler(logDir, cfg))

	return server.ServeStdio(s)
}

// buildTimeline re-reads the logs so every tool call sees fresh history
func buildTimeline(logDir string) (*timeline.Timeline, error) {
	files, err := discover.SessionFiles(logDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no session logs in %s", logDir)
	}
	return timeline.Build(files)
}

func decodeArgs(request mcp.CallToolRequest, out interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, out)
}

func makeListCheckpointsHandler(logDir string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListCheckpointsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		tl, err := buildTimeline(logDir)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		d := checkpoint.New(tl)
		paths := tl.Index().Paths()
		if args.Path != "" {
			paths = []string{filepath.Clean(args.Path)}
		}

		var results []CheckpointInfo
		for _, path := range paths {
			for _, cp := range d.History(path) {
				results = append(results, CheckpointInfo{
					UUID:      cp.MutatingUUID,
					Trigger:   cp.TriggerUUID,
					Path:      cp.TargetPath,
					Operation: string(cp.Operation),
					Timestamp: cp.Timestamp.Format("2006-01-02 15:04:05"),
					Prompt:    cp.Prompt,
				})
			}
		}

		// Newest first, capped
		for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
			results[i], results[j] = results[j], results[i]
		}
		if len(results) > limit {
			results = results[:limit]
		}

		resultJSON, err := json.Marshal(map[string]interface{}{
			"checkpoints": results,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeReconstructHandler(logDir string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ReconstructFileArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		tl, err := buildTimeline(logDir)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
		}

		snap, err := snapshotFor(tl, args.Path, args.At)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(snap.Content)), nil
	}
}

func makeDiffHandler(logDir string, cfg *config.Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args DiffFileArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		tl, err := buildTimeline(logDir)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
		}

		snap, err := snapshotFor(tl, args.Path, args.At)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := diffengine.AgainstDisk(snap, cfg.DiffContext)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("diff failed: %v", err)), nil
		}
		if text == "" {
			text = "No differences."
		}
		return mcp.NewToolResultText(text), nil
	}
}

func makeRestoreHandler(logDir string, cfg *config.Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args RestoreFileArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		tl, err := buildTimeline(logDir)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
		}

		snap, err := snapshotFor(tl, args.Path, args.At)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		exec := restore.Executor{BackupDir: cfg.BackupDir}
		res, err := exec.Restore(snap)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("restore failed: %v", err)), nil
		}

		resultJSON, _ := json.Marshal(map[string]interface{}{
			"restored": res.Path,
			"bytes":    res.Bytes,
			"backup":   res.BackupPath,
		})
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func snapshotFor(tl *timeline.Timeline, path, at string) (*models.Snapshot, error) {
	r := reconstruct.New(tl)
	cleaned := filepath.Clean(path)
	if at == "" {
		return r.Latest(cleaned)
	}
	uuid, err := tl.Index().ResolvePrefix(at)
	if err != nil {
		return nil, err
	}
	return r.Reconstruct(cleaned, uuid)
}
