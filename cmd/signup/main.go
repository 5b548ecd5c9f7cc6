package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signup/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "signup",
		Short: "Account signup server and terminal client",
		Long: `signup serves the account signup page and forwards valid
submissions to the authentication backend.

The same form rules drive the browser page, its live validation
channel and the interactive terminal prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to signup.json (default ./signup.json)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		serveCmd(opts),
		promptCmd(opts),
		codesCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// newLogger returns the CLI logger. Logs go to stderr so prompt output on
// stdout stays clean.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printError(w io.Writer, err error) {
	var se *errors.SignupError
	if stderrors.As(err, &se) {
		fmt.Fprintln(w, se.Format())
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}
