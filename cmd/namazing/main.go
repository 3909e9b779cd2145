package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	namazing "github.com/ajaysolanky/namazing-sub000"
)

// version is set at build time via -ldflags.
var version = "dev"

// shutdownTimeout bounds the wait for in-flight runs after a signal.
const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run0())
}

func run0() int {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "namazing",
		Short: "Turn a naming brief into researched name suggestions",
		Long: `namazing runs a free-text naming brief through five stages
(brief parser, name generator, researcher, expert selector, report composer)
and streams progress events as it goes.

Model providers are configured with environment variables; with none set,
every stage answers from its deterministic fallback.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newServeCmd(), newRunCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port int
	var stub bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.OutOrStdout())
			slog.SetDefault(logger)

			opts := []namazing.Option{namazing.WithLogger(logger), namazing.WithVersion(version)}
			if port != 0 {
				opts = append(opts, namazing.WithPort(port))
			}
			if stub {
				opts = append(opts, namazing.WithStubMode())
			}
			app, err := namazing.New(opts...)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "TCP port (overrides NAMAZING_PORT)")
	cmd.Flags().BoolVar(&stub, "stub", false, "use deterministic fallbacks only")
	return cmd
}

func newRunCmd() *cobra.Command {
	var (
		modeFlag  string
		briefFile string
		stub      bool
	)
	cmd := &cobra.Command{
		Use:   "run [brief...]",
		Short: "Execute one run in-process and print every event as a JSON line",
		Long: `Execute one run and print each event to stdout as a JSON line, in
emission order. Logs go to stderr. The brief comes from --brief-file
("-" reads stdin) or from the remaining arguments.

Exits non-zero when the run fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := namazing.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			brief, err := resolveBrief(args, briefFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts := []namazing.Option{namazing.WithLogger(newLogger(cmd.ErrOrStderr())), namazing.WithVersion(version)}
			if stub {
				opts = append(opts, namazing.WithStubMode())
			}
			app, err := namazing.New(opts...)
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), app, brief, mode, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", string(namazing.ModeSerial), "serial or parallel")
	cmd.Flags().StringVar(&briefFile, "brief-file", "", `read the brief from a file ("-" for stdin)`)
	cmd.Flags().BoolVar(&stub, "stub", false, "use deterministic fallbacks only")
	return cmd
}

// executeRun drives one run to completion, writing its events to out, and
// shuts the app down.
func executeRun(ctx context.Context, app *namazing.App, brief string, mode namazing.Mode, out io.Writer) (err error) {
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if serr := app.Shutdown(sctx); serr != nil && err == nil {
			err = serr
		}
	}()

	// Listener calls are serialized per run.
	enc := json.NewEncoder(out)
	var writeErr error
	started, unsubscribe, err := app.StartAndSubscribe(ctx, brief, mode, func(e namazing.Event) {
		if writeErr == nil {
			writeErr = enc.Encode(e)
		}
	})
	if err != nil {
		return err
	}
	app.Wait()
	unsubscribe()

	run, err := app.GetRun(started.ID)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("write events: %w", writeErr)
	}
	if run.Status != namazing.RunStatusCompleted {
		return fmt.Errorf("run %s %s: %s", run.ID, run.Status, run.Error)
	}
	return nil
}

// resolveBrief picks the brief from --brief-file or the positional args.
func resolveBrief(args []string, briefFile string, stdin io.Reader) (string, error) {
	var brief string
	switch {
	case briefFile != "" && len(args) > 0:
		return "", errors.New("pass the brief as arguments or with --brief-file, not both")
	case briefFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read brief from stdin: %w", err)
		}
		brief = string(b)
	case briefFile != "":
		b, err := os.ReadFile(briefFile)
		if err != nil {
			return "", fmt.Errorf("read brief: %w", err)
		}
		brief = string(b)
	default:
		brief = strings.Join(args, " ")
	}
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return "", errors.New("a brief is required")
	}
	return brief, nil
}

// newLogger builds the JSON logger. NAMAZING_LOG_LEVEL picks the level.
func newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("NAMAZING_LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
