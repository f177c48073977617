package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/buddy/internal/adapters/driving/mcp"
	"github.com/custodia-labs/buddy/internal/core/services"
	"github.com/custodia-labs/buddy/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so a voice session manager can
retrieve knowledge-base context and augment conversation turns.

By default the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead.

The collection is attached at startup; the command fails if it has not
been built with 'buddy index'.

Examples:
  # Stdio mode (default)
  buddy mcp serve

  # HTTP mode
  buddy mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

// serveMCP runs a server over stdio or HTTP. Tests replace it.
var serveMCP = func(cmd *cobra.Command, server *mcp.Server, port int) error {
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(commandContext(cmd), addr)
	}
	return server.Run(commandContext(cmd))
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}

	retriever, cleanup, err := openRetriever(commandContext(cmd), s)
	if err != nil {
		return err
	}
	defer cleanup()

	augmenter := services.NewTurnAugmenter(retriever, s.Retriever.TopK)
	ports := &mcp.Ports{
		Retriever: retriever,
		Augmenter: augmenter,
	}
	if prompts, err := getPromptStore(); err != nil {
		logger.Warn("Custom prompts unavailable, using defaults: %v", err)
	} else {
		augmenter.SetPromptStore(prompts)
		ports.Prompts = prompts
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	logger.Info("Serving collection %q over MCP", retriever.Collection().Name)
	return serveMCP(cmd, server, port)
}
