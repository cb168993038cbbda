package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/cmd/ccrewind/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve timeline tools over the Model Context Protocol",
	Long: `Run an MCP server over stdio exposing list_checkpoints,
reconstruct_file, diff_file, and restore_file for the selected project.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	project := projectPath
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		project = cwd
	}
	if err := mcp.StartServer(filepath.Clean(project)); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
