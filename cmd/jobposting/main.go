// Package main provides the jobposting command-line tool: submit a posting
// for extraction, review and edit the record, and publish it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Startup-Mindset/job-posting/internal/api"
	"github.com/Startup-Mindset/job-posting/internal/app"
	"github.com/Startup-Mindset/job-posting/internal/config"
	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/metrics"
	"github.com/Startup-Mindset/job-posting/internal/secrets"
)

const usage = `Usage: jobposting [-config path] [-env path] <command> [options]

Commands:
  file <path>     extract a posting from a PDF/JPEG/PNG file
  text <text|->   extract a posting from text ("-" reads stdin)
  url <url>       extract a posting from a web page
  serve           run the HTTP API
  token set|delete  manage the publish credential in the OS keychain

Extraction commands accept -set "Field=value" (repeatable) and -publish.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// setFlags collects repeated -set Field=value edits in order.
type setFlags []app.FieldEdit

func (s *setFlags) String() string {
	parts := make([]string, len(*s))
	for i, e := range *s {
		parts[i] = e.Name + "=" + e.Value
	}

	return strings.Join(parts, ",")
}

func (s *setFlags) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected Field=value, got %q", v)
	}

	*s = append(*s, app.FieldEdit{Name: strings.TrimSpace(name), Value: value})

	return nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("jobposting", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	configPath := global.String("config", "", "Path to YAML config file")
	envPath := global.String("env", ".env", "Path to .env file (skipped when missing)")

	if err := global.Parse(args); err != nil {
		return 2
	}

	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cmd, rest := global.Arg(0), global.Args()[1:]

	if cmd == "token" {
		return runToken(rest, stdin, stdout, stderr, *configPath)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := logger.New(logger.Options{Output: stderr, Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	m := metrics.New()
	a := app.New(cfg, log, m)

	switch cmd {
	case "file", "text", "url":
		return runExtract(ctx, a, cfg, cmd, rest, stdin, stdout, stderr)
	case "serve":
		return runServe(ctx, a, cfg, m, log, rest, stderr)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
		global.Usage()

		return 2
	}
}

func runExtract(ctx context.Context, a *app.App, cfg *config.Config, cmd string, args []string,
	stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var edits setFlags

	fs.Var(&edits, "set", "Edit a field before publishing: Field=value (repeatable)")
	publish := fs.Bool("publish", false, "Publish the record after review")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: %s takes exactly one argument\n", cmd)
		return 2
	}

	input := fs.Arg(0)

	var (
		snap app.Snapshot
		err  error
	)

	switch cmd {
	case "file":
		content, readErr := os.ReadFile(input)
		if readErr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", readErr)
			return 1
		}

		snap, err = a.SubmitFile(ctx, filepath.Base(input), content)
	case "text":
		if input == "-" {
			data, readErr := io.ReadAll(stdin)
			if readErr != nil {
				fmt.Fprintf(stderr, "Error: %v\n", readErr)
				return 1
			}

			input = string(data)
		}

		snap, err = a.SubmitText(ctx, input)
	case "url":
		snap, err = a.SubmitURL(ctx, input)
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if len(edits) > 0 {
		if snap, err = a.Edit(edits...); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Fprintln(stdout, snap.Render(cfg.Display.MaxCellWidth))

	if !*publish {
		return 0
	}

	snap, err = a.Publish(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "\n✓ Published: %s\n", snap.PublishedURL)

	return 0
}

func runServe(ctx context.Context, a *app.App, cfg *config.Config, m *metrics.Metrics, log *logger.Logger,
	args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	addr := fs.String("addr", cfg.Server.Addr, "Listen address")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	srv := api.NewServer(a, m, log, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Upload.MaxFileBytes,
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("Starting API server", "addr", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutdown failed", "error", err)
			return 1
		}

		log.Info("Server stopped")
	}

	return 0
}

// runToken manages the keychain entry. It needs no extraction endpoints,
// so the config is read without validation.
func runToken(args []string, stdin io.Reader, stdout, stderr io.Writer, configPath string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: jobposting token set|delete")
		return 2
	}

	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	account := cfg.Publish.KeyringAccount

	switch args[0] {
	case "set":
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		if err := secrets.SetToken(account, strings.TrimSpace(string(data))); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		fmt.Fprintf(stdout, "✓ Token stored for %s\n", account)
	case "delete":
		if err := secrets.DeleteToken(account); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		fmt.Fprintf(stdout, "✓ Token deleted for %s\n", account)
	default:
		fmt.Fprintf(stderr, "Error: unknown token command %q\n", args[0])
		return 2
	}

	return 0
}
