// Command watermarker stamps a watermark onto images, once or tiled, and can
// expose the same engine as an MCP server.
package main

import (
	"os"

	"github.com/ironsheep/image-watermark/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cli.SetVersion(Version, GitCommit, BuildTime)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
