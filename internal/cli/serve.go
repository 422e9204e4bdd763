package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-watermark/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run a Model Context Protocol server that speaks JSON-RPC 2.0 over stdin and
stdout, exposing image_load, image_dimensions, watermark_plan and
watermark_apply as tools. Logs go to stderr; set WATERMARKER_LOG_LEVEL=debug
or pass --verbose for request tracing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			logger.Debug("watermarker MCP server", "version", version, "commit", commit, "built", date)
			return server.New(logger, version).Run(ctx)
		},
	}
}
