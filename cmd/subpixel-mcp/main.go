package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/subpixel-mcp/internal/config"
	"github.com/ironsheep/subpixel-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("subpixel-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("subpixel-mcp - MCP server for subpixel extremum localization")
			fmt.Println()
			fmt.Println("Usage: subpixel-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SUBPIXEL_MCP_CONFIG=path          TOML configuration file")
			fmt.Println("  SUBPIXEL_MCP_LOG_LEVEL=debug      Log level (debug, info, warn, error)")
			fmt.Println("  SUBPIXEL_MCP_LOG_FORMAT=console   Log format (json, console)")
			fmt.Println("  SUBPIXEL_MCP_MAX_ITERATIONS=N     Mean-shift iteration limit")
			fmt.Println("  SUBPIXEL_MCP_WORKERS=N            Concurrent extremum refinements (0 = all CPUs)")
			fmt.Println("  SUBPIXEL_MCP_TOOL_TIMEOUT=30s     Per-tool-call time limit")
			fmt.Println("  SUBPIXEL_MCP_DEFAULT_METHOD=name  Fit method when a call names none")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Logs are written to stderr.")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "subpixel-mcp: %v\n", err)
		os.Exit(2)
	}

	// stdout is for MCP protocol
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "subpixel-mcp: %v\n", err)
		os.Exit(2)
	}
	log.Debug("main", "starting", map[string]interface{}{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
	})

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Error("main", err, nil)
		os.Exit(1)
	}
}
