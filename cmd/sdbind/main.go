package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/sdbind/internal/cli"
)

// main is the entrypoint for the sdbind CLI.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:])
	os.Exit(exitCode(err))
}

// run executes the root command. Errors commands have not already reported
// (flag and argument errors, invalid --format) are written to errW.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := cli.NewRootCommand()
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(errW, "Error: %v\n", err)
		fmt.Fprintf(errW, "Run '%s --help' for usage.\n", cmd.CommandPath())
		return cli.WrapExitError(cli.ExitCommandError, "invalid invocation", err)
	}
	return err
}

func exitCode(err error) int {
	return cli.GetExitCode(err)
}
