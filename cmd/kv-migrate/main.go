package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/ratelimiter"
	"github.com/fystack/kvstream/pkg/stream"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

type CLI struct {
	Config   string   `help:"Path to config file."                           default:"configs/config.yaml" name:"config"`
	From     string   `help:"Source scheme."                                 required:""                   name:"from"`
	To       string   `help:"Destination scheme."                            required:""                   name:"to"`
	Prefixes []string `help:"Key prefixes to copy (repeatable, empty = all)." name:"prefix"`
	Verify   bool     `help:"Read every copied value back and compare."      name:"verify"`
	DryRun   bool     `help:"Print actions without writing."                 name:"dry-run"`
	Rate     int      `help:"Maximum keys copied per second (0 = unlimited)." name:"rate"`
	Workers  int      `help:"Keys copied in parallel."                       default:"4"                   name:"workers"`
	Debug    bool     `help:"Enable debug logs."                             name:"debug"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("kv-migrate"),
		kong.Description("Copy values between two configured schemes through streams"),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{Level: level, TimeFormat: time.RFC3339})

	if cli.From == cli.To {
		ctx.Fatalf("source and destination must differ")
	}

	cfg, err := config.Load(cli.Config)
	ctx.FatalIfErrorf(err)
	cfg, err = onlySchemes(cfg, cli.From, cli.To)
	ctx.FatalIfErrorf(err)

	w, err := stream.NewFromConfig(cfg)
	ctx.FatalIfErrorf(err)
	defer w.Close()

	prefixes := cli.Prefixes
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	fmt.Printf("%s%sMigrating %s%s%s -> %s%s%s (prefixes: %s)%s\n\n",
		colorBold, colorCyan, colorYellow, cli.From, colorCyan, colorYellow, cli.To, colorCyan,
		strings.Join(cli.Prefixes, ", "), colorReset)

	m := &migrator{
		wrapper: w,
		from:    cli.From,
		to:      cli.To,
		verify:  cli.Verify,
		dryRun:  cli.DryRun,
		limiter: ratelimiter.New(cli.Rate, 1),
		workers: cli.Workers,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, err := m.run(runCtx, prefixes)
	ctx.FatalIfErrorf(err)
	printSummary(res, time.Since(start), cli.DryRun)
}

// onlySchemes trims cfg down to the two schemes involved so unrelated
// backends are never dialed.
func onlySchemes(cfg *config.Config, from, to string) (*config.Config, error) {
	trimmed := *cfg
	trimmed.Schemes.Items = make(map[string]config.SchemeConfig, 2)
	for _, name := range []string{from, to} {
		sc, err := cfg.Schemes.Get(name)
		if err != nil {
			return nil, err
		}
		trimmed.Schemes.Items[name] = sc
	}
	trimmed.DefaultScheme = from
	return &trimmed, nil
}

func printSummary(res result, duration time.Duration, dryRun bool) {
	fmt.Println()
	fmt.Printf("%s%sSummary:%s\n", colorBold, colorGreen, colorReset)
	if dryRun {
		fmt.Printf("  Would copy: %s%d%s keys (%s)\n", colorYellow, res.total, colorReset, humanize.Bytes(uint64(res.bytes)))
	} else {
		fmt.Printf("  Keys:    %s%d%s\n", colorYellow, res.total, colorReset)
		fmt.Printf("  Copied:  %s%d%s (%s)\n", colorGreen, res.copied, colorReset, humanize.Bytes(uint64(res.bytes)))
	}
	fmt.Printf("  Duration: %s%s%s\n", colorYellow, duration.Round(time.Millisecond), colorReset)
	if !dryRun && res.copied > 0 && duration > 0 {
		fmt.Printf("  Rate: %s%.1f keys/sec%s\n", colorYellow, float64(res.copied)/duration.Seconds(), colorReset)
	}

	if dryRun {
		fmt.Printf("\n%s%sDry run completed, nothing was written%s\n", colorBold, colorYellow, colorReset)
		return
	}
	fmt.Printf("\n%s%sMigration completed%s\n", colorBold, colorGreen, colorReset)
}

func progressBar(progress float64, width int) string {
	filled := int(progress / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func printProgress(done, total int) {
	progress := float64(done) / float64(total) * 100
	fmt.Printf("\r%sProgress:%s %s %s%.1f%%%s (%d/%d)",
		colorBold, colorReset, progressBar(progress, 20), colorGreen, progress, colorReset, done, total)
}

func printScan(prefix string, n int) {
	if prefix == "" {
		prefix = "(all)"
	}
	fmt.Printf("  %sScanned%s %s%s%s: %d keys\n", colorBlue, colorReset, colorCyan, prefix, colorReset, n)
}

func printDryRun(keys []string) {
	fmt.Printf("\n%sDRY RUN, keys that would be copied:%s\n", colorRed, colorReset)
	for i, k := range keys {
		if i == 10 {
			fmt.Printf("  ... and %d more\n", len(keys)-10)
			break
		}
		fmt.Printf("  %s\n", k)
	}
}
