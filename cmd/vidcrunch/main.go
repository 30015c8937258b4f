package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vidcrunch",
	Short: "VidCrunch CLI - compress videos and manage compression history",
	Long: `vidcrunch is the command-line interface for the VidCrunch compress API.

It signs an upload with the API, streams the video straight to the media
service, and records the result in your compression history.

Examples:
  # Compress a video at quality 65, keeping the original resolution
  vidcrunch compress clip.mp4

  # Target quality and resolution
  vidcrunch compress clip.mp4 --quality 80 --resolution 1280x720

  # Browse and prune history
  vidcrunch history list --sort biggest-saving
  vidcrunch history delete vid_01HYQ... --yes`,
	Version: version,
}

var (
	apiURL    string
	authToken string
)

func init() {
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("VIDCRUNCH_API_URL", "http://localhost:8480"), "Compress API base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("VIDCRUNCH_TOKEN"), "Bearer token (defaults to VIDCRUNCH_TOKEN)")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
