package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┐┌┌─┐┬  ┬┬─┐┌─┐┬ ┬┌┬┐┌─┐
  │││├─┤└┐┌┘├┬┘│ ││ │ │ ├┤
  ┘└┘┴ ┴ └┘ ┴└─└─┘└─┘ ┴ └─┘
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		asJSON, _ := cmd.PersistentFlags().GetBool("json")
		errors.PrintError(stderr, err, asJSON)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var verbose, noColor bool

	rootCmd := &cobra.Command{
		Use:   "navroute",
		Short: "Client-side routing for static sites",
		Long: `navroute maps URL paths to events for single-page sites.

Routes are declared in a manifest (routes.yaml) and run in the
browser through the WebAssembly router. The CLI helps you build
and check them:

  • Create a project with a starter manifest
  • Check which event a path dispatches
  • Rewrite links in static HTML for hash mode
  • Serve a site with route fallback, events and live reload`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
			errors.SetColors(!noColor && os.Getenv("NO_COLOR") == "" && isTerminal(cmd.ErrOrStderr()))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log router activity")
	rootCmd.PersistentFlags().Bool("json", false, "Print errors as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		matchCmd(),
		hashifyCmd(),
		serveCmd(),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// printBanner prints the navroute ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
