// Package cmd provides CLI commands for legacyjats.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "legacyjats",
	Short: "Migrate legacy article records to JATS XML",
	Long: `legacyjats converts legacy journal articles stored as ISIS paragraph
records with hand-written HTML into JATS-like XML.

The conversion runs as a sequence of stages. A failing stage is logged and
skipped, so every input yields a document. Structure that could not be
recovered with confidence is flagged with "uncertain" comments.

Examples:
  legacyjats convert article.id -o article.xml
  legacyjats convert article.id --translation en=en_before.html,en_after.html
  legacyjats convert *.id --out-dir xml/ --jobs 8
  legacyjats inspect partition article.id
  legacyjats classify xref "Figure 2" f2
  legacyjats audit *.id`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	setupLogger()
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(auditCmd)
}
