// taskflow: interview-driven issue intake MCP server.
//
// Usage:
//
//	taskflow serve        # Start MCP server (stdio transport)
//	taskflow serve-http   # Serve the same tools over HTTP
//	taskflow cleanup      # Remove expired completed interviews
//	taskflow version      # Print the version
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
