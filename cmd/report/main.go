// Command report loads the configured sources once, prints the dashboard as
// JSON and optionally writes it to the export directory as CSV or XLSX.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"bioinsights/internal/config"
	"bioinsights/internal/dataprocessing"
	"bioinsights/internal/exporter"
	"bioinsights/internal/files"
	"bioinsights/internal/infrastructure"
	"bioinsights/internal/services"
	"bioinsights/pkg/contracts/domain"
)

type options struct {
	states string
	from   string
	to     string
	out    string
	format string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run writes the dashboard JSON to stdout and logs to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()
	ctx = infrastructure.EnsureTraceID(ctx)

	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderConfig{
		Sheet:    cfg.Sources.Sheet,
		Encoding: cfg.Sources.Encoding,
		Comma:    cfg.Sources.DelimiterRune(),
	})
	svc := services.NewDashboardService(cfg, files.NewDiscovery(""), loader, logger)

	if _, err := svc.Reload(ctx); err != nil {
		return err
	}

	sel, err := opts.selection()
	if err != nil {
		return err
	}
	if len(sel.States) == 0 {
		view, err := svc.States(ctx)
		if err != nil {
			return err
		}
		sel.States = view.Default
	}

	dash, err := svc.Dashboard(ctx, sel)
	if err != nil {
		return err
	}
	if err := writeJSON(stdout, dash); err != nil {
		return err
	}

	if opts.format == "" {
		return nil
	}
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	dir := opts.out
	if dir == "" {
		dir = cfg.Export.Dir
	}
	written, err := exporter.NewDashboardExporter(exporter.NewCSVWriter(dir), logger).Export(dash, format)
	if err != nil {
		return fmt.Errorf("failed to export dashboard: %w", err)
	}
	for _, path := range written {
		logger.Info("Report written", slog.String("path", path))
	}
	return nil
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.StringVar(&opts.states, "states", "", "comma-separated states (defaults to the configured default selection)")
	fs.StringVar(&opts.from, "from", "", "start date, YYYY-MM-DD")
	fs.StringVar(&opts.to, "to", "", "end date, YYYY-MM-DD")
	fs.StringVar(&opts.out, "out", "", "export directory (defaults to export.dir)")
	fs.StringVar(&opts.format, "format", "", "export format: csv or xlsx; empty prints JSON only")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if (opts.from == "") != (opts.to == "") {
		return opts, fmt.Errorf("-from and -to must be given together")
	}
	return opts, nil
}

func (o options) selection() (dataprocessing.Selection, error) {
	var sel dataprocessing.Selection
	for _, s := range strings.Split(o.states, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sel.States = append(sel.States, s)
		}
	}
	if o.from == "" {
		return sel, nil
	}

	from, err := time.Parse(domain.DateLayout, o.from)
	if err != nil {
		return sel, fmt.Errorf("invalid -from date %q: %w", o.from, err)
	}
	to, err := time.Parse(domain.DateLayout, o.to)
	if err != nil {
		return sel, fmt.Errorf("invalid -to date %q: %w", o.to, err)
	}
	rng := dataprocessing.NewDateRange(from, to)
	sel.Range = &rng
	return sel, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
