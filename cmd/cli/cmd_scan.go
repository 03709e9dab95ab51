package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/seclab/seclab/pkg/finding"
	"github.com/seclab/seclab/pkg/scan"
	"github.com/seclab/seclab/pkg/scan/zapclient"
	"github.com/seclab/seclab/pkg/ui"
)

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	target := fs.String("u", "", "Target URL")
	fs.StringVar(target, "target", "", "Target URL (alias)")
	classList := fs.String("classes", "", "Vulnerability classes, comma-separated (sqli,xss,csrf,ssrf,lfi,rce,open-redirect,security-headers,idor)")
	engine := fs.String("engine", "", "Scan engine API base URL (empty runs the local simulation)")
	apiKey := fs.String("apikey", "", "Scan engine API key")
	poll := fs.Duration("poll", 0, "Engine poll interval (default 2s)")
	reportFile := fs.String("o", "", "Write a text report to this file")
	silent := fs.Bool("s", false, "Silent mode")
	noColor := fs.Bool("nc", false, "No color output")
	fs.Parse(os.Args[2:])

	ui.SetSilent(*silent)
	ui.SetNoColor(*noColor)
	if *target == "" {
		fatal("scan: -u <target> is required", nil)
	}

	classes, err := parseClasses(*classList)
	if err != nil {
		fatal("scan", err)
	}

	ui.PrintBanner()
	ui.PrintSection("Vulnerability Scan")
	ui.PrintConfigLine("Target", *target)
	ui.PrintConfigLine("Classes", *classList)
	ui.PrintConfigLine("Engine", *engine)

	opts := []scan.Option{}
	if *engine != "" {
		opts = append(opts, scan.WithExecutor(zapclient.New(zapclient.Config{
			BaseURL: *engine,
			APIKey:  *apiKey,
		})))
	}
	orch := scan.NewOrchestrator(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan scan.Session, 1)
	seen := make(map[string]bool)
	session, err := orch.StartScan(ctx, scan.Config{
		TargetURL:    *target,
		Classes:      classes,
		PollInterval: *poll,
	}, func(s scan.Session) {
		for _, f := range s.Findings {
			if !seen[f.ID] {
				seen[f.ID] = true
				ui.PrintFinding(string(f.Severity), string(f.Type), f.Title, f.URL)
			}
		}
		if s.Status.Terminal() {
			done <- s
		}
	})
	if err != nil {
		fatal("start scan", err)
	}
	ui.PrintConfigLine("Session", session.ID)

	var final scan.Session
	select {
	case final = <-done:
	case <-ctx.Done():
		if err := orch.StopScan(session.ID); err == nil {
			final = <-done
		} else {
			final, _ = orch.GetSession(session.ID)
		}
	}

	printSummary(final)

	if err := saveSession(final); err != nil {
		ui.PrintWarning(fmt.Sprintf("could not persist session: %v", err))
	}

	if *reportFile != "" {
		text, err := orch.GenerateReport(session.ID)
		if err != nil {
			fatal("generate report", err)
		}
		if err := os.WriteFile(*reportFile, []byte(text), 0o644); err != nil {
			fatal("write report", err)
		}
		ui.PrintSuccess("report written to " + *reportFile)
	}

	if final.Status == scan.StatusError {
		os.Exit(1)
	}
}

func parseClasses(s string) ([]finding.Class, error) {
	if s == "" {
		return nil, nil
	}
	var out []finding.Class
	for _, part := range strings.Split(s, ",") {
		c := finding.Class(strings.TrimSpace(part))
		if !c.IsValid() {
			return nil, fmt.Errorf("unknown vulnerability class %q", part)
		}
		out = append(out, c)
	}
	return out, nil
}

func printSummary(s scan.Session) {
	fmt.Println()
	elapsed := s.CompletedAt.Sub(s.StartedAt).Round(time.Millisecond)
	fmt.Printf("Status: %s (%s mode, %s, %d request(s))\n",
		s.Status, s.Mode, elapsed, s.RequestCount)
	fmt.Printf("Findings: %d total, %d critical, %d high, %d medium, %d low, %d info\n",
		s.Summary.Total(),
		s.Summary.Critical, s.Summary.High, s.Summary.Medium, s.Summary.Low, s.Summary.Info)
}
