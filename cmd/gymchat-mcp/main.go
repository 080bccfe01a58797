package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gymmcp "github.com/claude/gymchat/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "GymChat server URL (e.g. https://gymchat.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("GYMCHAT_AUTH_API_KEY"), "API key, for servers not on Tailscale")
	user := flag.String("user", "", "user to act as, for servers not on Tailscale")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymchat-mcp", Version)
		return
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymchat-mcp -server <URL> [-api-key KEY -user ID]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	client := gymmcp.NewHTTPClient(*serverURL, *apiKey)
	s := gymmcp.New(client, Version, log)

	log.Info("gymchat-mcp serving on stdio", "server", *serverURL)
	if err := gymmcp.ServeStdio(s, *user); err != nil {
		log.Error("stdio server stopped", "error", err)
		os.Exit(1)
	}
}
