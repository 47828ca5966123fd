// Command hostelctl is a terminal admin console for the hostel CRM.
//
//	hostelctl login -email admin@example.org -password secret
//	hostelctl applicants -gender female -unassigned
//	hostelctl assign -hostel 4 -members 11,12
//
// Configuration comes from hostelctl.yaml and HOSTEL_ environment variables,
// see package config. A .env file in the working directory is loaded first.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-hostel-admin/config"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/goliatone/go-hostel-admin/pkg/di"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hostelctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default $HOSTEL_CONFIG or ./hostelctl.yaml)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		usage(fs)
		return 2
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(stderr, "hostelctl: read .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "hostelctl: %v\n", err)
		return 1
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Output = stderr
	logging.Init(cfg.Logging)

	container, err := di.NewContainer(ctx, cfg, di.WithRedirect(func(ctx context.Context, path string) {
		logging.Ctx(ctx).Warn().Str("next", path).Msg("session rejected by the API, sign in again")
	}))
	if err != nil {
		fmt.Fprintf(stderr, "hostelctl: %v\n", err)
		return 1
	}
	defer container.Close()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	if err := dispatch(ctx, container, fs.Arg(0), fs.Args()[1:], stdout); err != nil {
		fmt.Fprintf(stderr, "hostelctl: %v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: hostelctl [-config path] [-v] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out)
	fs.PrintDefaults()
}
