package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/seclab/seclab/pkg/report"
	"github.com/seclab/seclab/pkg/scan"
	"github.com/seclab/seclab/pkg/ui"
)

func runSessions() {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	remove := fs.String("rm", "", "Delete the session with this id")
	show := fs.String("report", "", "Print a text report for the session with this id")
	noColor := fs.Bool("nc", false, "No color output")
	fs.Parse(os.Args[2:])

	ui.SetNoColor(*noColor)

	if *remove != "" {
		if err := deleteSession(*remove); err != nil {
			fatal("sessions", err)
		}
		ui.PrintSuccess("deleted session " + *remove)
		return
	}

	if *show != "" {
		s, err := findSession(*show)
		if err != nil {
			fatal("sessions", err)
		}
		r := report.ScanReport{
			Target:      s.Config.TargetURL,
			Mode:        string(s.Mode),
			StartedAt:   s.StartedAt,
			CompletedAt: s.CompletedAt,
			Summary:     s.Summary,
			Findings:    s.Findings,
		}
		fmt.Print(r.Text())
		return
	}

	sessions, err := loadSessions()
	if err != nil {
		fatal("sessions", err)
	}
	if len(sessions) == 0 {
		ui.PrintWarning("no recorded sessions")
		return
	}

	ui.PrintBanner()
	ui.PrintSection("Scan Sessions")

	var rows [][]string
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID,
			s.Config.TargetURL,
			string(s.Mode),
			string(s.Status),
			strconv.Itoa(s.Summary.Total()),
			s.StartedAt.Format(time.RFC3339),
		})
	}
	if err := ui.Table(os.Stdout, []string{"ID", "Target", "Mode", "Status", "Findings", "Started"}, rows); err != nil {
		fatal("render table", err)
	}
}

func findSession(id string) (scan.Session, error) {
	sessions, err := loadSessions()
	if err != nil {
		return scan.Session{}, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return scan.Session{}, scan.ErrNoSession
}
