// Command reciperunner runs declarative YAML recipes that transform tabular
// data through an ordered pipeline of typed steps.
package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/reciperunner/internal"
	"github.com/cruciblehq/reciperunner/internal/cli"
)

// main configures a startup logger, then hands off to the CLI, which
// reconfigures logging once flags are parsed.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())
	slog.Debug("reciperunner is running", "pid", os.Getpid(), "cwd", cwd(), "args", os.Args)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// logger builds the startup logger from build-time linker flags, before any
// CLI flag has been parsed.
func logger() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case internal.IsDebug():
		level = slog.LevelDebug
	case internal.IsQuiet():
		level = slog.LevelWarn
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).WithGroup(internal.Name)
}

// cwd returns the current working directory, or "(unknown)".
func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return dir
}
