package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/seclab/seclab/pkg/headers"
	"github.com/seclab/seclab/pkg/ui"
)

func runHeaders() {
	fs := flag.NewFlagSet("headers", flag.ExitOnError)
	target := fs.String("u", "", "Target URL")
	fs.StringVar(target, "target", "", "Target URL (alias)")
	timeout := fs.Duration("timeout", 10*time.Second, "Probe timeout")
	silent := fs.Bool("s", false, "Silent mode")
	noColor := fs.Bool("nc", false, "No color output")
	fs.Parse(os.Args[2:])

	ui.SetSilent(*silent)
	ui.SetNoColor(*noColor)
	if *target == "" {
		fatal("headers: -u <target> is required", nil)
	}

	ui.PrintBanner()
	ui.PrintSection("Security Header Analysis")
	ui.PrintConfigLine("Target", *target)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	analyzer := headers.NewAnalyzer(nil)
	report, err := analyzer.Analyze(ctx, *target)
	if err != nil {
		fatal("header analysis failed", err)
	}

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		value := r.Value
		if r.Verdict == headers.VerdictMissing {
			value = "-"
		}
		rows = append(rows, []string{r.Name, string(r.Verdict), value})
	}
	if err := ui.Table(os.Stdout, []string{"Header", "Verdict", "Value"}, rows); err != nil {
		fatal("render table", err)
	}

	fmt.Println()
	fmt.Printf("Score: %d/100 (%d header(s) missing)\n", report.Score, report.MissingCount())
}
