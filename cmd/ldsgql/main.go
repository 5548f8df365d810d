// Command ldsgql compiles a GraphQL record query into a SQLite statement over
// a JSON key/value store, and optionally executes it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"lds-graphql-eval/internal/cliapp"
	"lds-graphql-eval/internal/config"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	stdinIsTerminal := term.IsTerminal(int(os.Stdin.Fd()))
	if err := run(os.Args[1:], os.Stdin, stdinIsTerminal, os.Stdout); err != nil {
		if !errors.Is(err, cliapp.ErrCompileFailed) {
			slog.Error("ldsgql failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdinIsTerminal bool, stdout io.Writer) error {
	fs := pflag.NewFlagSet("ldsgql", pflag.ContinueOnError)
	fs.Bool("version", false, "Print version and exit")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := fs.GetBool("version"); showVersion {
		fmt.Fprintf(stdout, "ldsgql %s (%s)\n", Version, Commit)
		return nil
	}

	validationResult := cfg.Validate()
	for _, warn := range validationResult.Warnings {
		slog.Warn("configuration warning",
			slog.String("field", warn.Field),
			slog.String("message", warn.Message),
			slog.String("hint", warn.Hint),
		)
	}
	if validationResult.HasErrors() {
		for _, err := range validationResult.Errors {
			slog.Error("configuration error",
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.String("hint", err.Hint),
			)
		}
		return fmt.Errorf("configuration validation failed")
	}

	logger, logCloser, err := cliapp.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	app, err := cliapp.New(cfg, logger, cliapp.Options{
		Version:         Version,
		Stdin:           stdin,
		StdinIsTerminal: stdinIsTerminal,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := app.Init(ctx); err != nil {
		return err
	}
	runErr := app.Run(ctx, stdout)
	if err := app.Shutdown(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
