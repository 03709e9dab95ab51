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

	"github.com/seclab/seclab/pkg/exchange"
	"github.com/seclab/seclab/pkg/fuzz"
	"github.com/seclab/seclab/pkg/ui"
)

// headerFlags collects repeated -H occurrences.
type headerFlags []string

func (h *headerFlags) String() string { return strings.Join(*h, "; ") }

func (h *headerFlags) Set(v string) error {
	*h = append(*h, v)
	return nil
}

func runFuzz() {
	fs := flag.NewFlagSet("fuzz", flag.ExitOnError)
	target := fs.String("u", "", "Target URL")
	fs.StringVar(target, "target", "", "Target URL (alias)")
	method := fs.String("X", "GET", "HTTP method")
	body := fs.String("d", "", "Request body")
	var hdrs headerFlags
	fs.Var(&hdrs, "H", "Header to add, 'Name: Value' (repeatable)")
	point := fs.String("point", "", "Insertion point as type:key (query:q, body:user, header:X-Api-Key, path:id)")
	setID := fs.String("set", "sql-injection", "Payload set id")
	delay := fs.Duration("delay", 0, "Delay between payloads (default 100ms)")
	all := fs.Bool("a", false, "Show every result, not just interesting ones")
	silent := fs.Bool("s", false, "Silent mode")
	noColor := fs.Bool("nc", false, "No color output")
	fs.Parse(os.Args[2:])

	ui.SetSilent(*silent)
	ui.SetNoColor(*noColor)
	if *target == "" {
		fatal("fuzz: -u <target> is required", nil)
	}
	pt, err := parsePoint(*point)
	if err != nil {
		fatal("fuzz", err)
	}

	base, err := exchange.NewRequest(*method, *target)
	if err != nil {
		fatal("fuzz: bad target", err)
	}
	base.Body = []byte(*body)
	for _, h := range hdrs {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			fatal(fmt.Sprintf("fuzz: malformed header %q", h), nil)
		}
		base.Headers = base.Headers.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	ui.PrintBanner()
	ui.PrintSection("Request Fuzzer")
	ui.PrintConfigLine("Target", *target)
	ui.PrintConfigLine("Method", base.Method)
	ui.PrintConfigLine("Point", *point)
	ui.PrintConfigLine("Set", *setID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := fuzz.NewRunner(fuzz.Config{Delay: *delay})
	results, err := runner.Run(ctx, base, pt, *setID, fuzz.Callbacks{
		OnResult: func(res fuzz.Result) {
			printFuzzResult(res, *all)
		},
	})
	if err != nil {
		fatal("fuzz run", err)
	}

	interesting := 0
	for _, res := range results {
		if res.Interesting {
			interesting++
		}
	}
	fmt.Println()
	fmt.Printf("Done: %d payload(s), %d interesting\n", len(results), interesting)
}

func parsePoint(s string) (fuzz.InsertionPoint, error) {
	typ, key, ok := strings.Cut(s, ":")
	if !ok || typ == "" || key == "" {
		return fuzz.InsertionPoint{}, fmt.Errorf("insertion point must be type:key, got %q", s)
	}
	return fuzz.InsertionPoint{Type: fuzz.InsertionType(typ), Key: key}, nil
}

func printFuzzResult(res fuzz.Result, showAll bool) {
	switch {
	case res.Err != "":
		ui.PrintWarning(fmt.Sprintf("%q failed: %s", res.Payload, res.Err))
	case res.Interesting:
		ui.PrintFinding("medium", "fuzz",
			fmt.Sprintf("%q -> %d (%s)", res.Payload, res.Response.StatusCode,
				strings.Join(res.Notes, "; ")),
			"")
	case showAll:
		fmt.Fprintf(os.Stderr, "  %q -> %d in %s\n",
			res.Payload, res.Response.StatusCode, res.Response.Latency.Round(time.Millisecond))
	}
}
