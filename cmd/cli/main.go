// Command cli is the terminal entry point for the security lab:
// header grading, vulnerability scans, request fuzzing and API schema
// analysis.
package main

import (
	"fmt"
	"os"

	"github.com/seclab/seclab/pkg/ui"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "headers", "header":
		runHeaders()
	case "scan", "scanning":
		runScan()
	case "sessions", "session":
		runSessions()
	case "fuzz", "fuzzing":
		runFuzz()
	case "payloads", "payload":
		runPayloads()
	case "schema", "openapi", "graphql":
		runSchema()
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	case "-v", "--version", "version":
		fmt.Println("seclab v" + ui.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	ui.PrintBanner()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.LabelStyle.Render("headers "), "Grade a target's security response headers")
	fmt.Printf("  %s  %s\n", ui.LabelStyle.Render("scan    "), "Run a vulnerability scan (delegated engine or local simulation)")
	fmt.Printf("  %s  %s\n", ui.LabelStyle.Render("sessions"), "List recorded scan sessions")
	fmt.Printf("  %s  %s\n", ui.LabelStyle.Render("fuzz    "), "Fuzz one insertion point of a request with a payload set")
	fmt.Printf("  %s  %s\n", ui.LabelStyle.Render("payloads"), "List built-in payload sets")
	fmt.Printf("  %s  %s\n", ui.LabelStyle.Render("schema  "), "Analyze an OpenAPI document or GraphQL introspection dump")
	fmt.Println()
	fmt.Println(ui.SectionStyle.Render("EXAMPLES"))
	fmt.Println()
	fmt.Printf("    %s\n", ui.ValueStyle.Render("seclab headers -u https://example.com"))
	fmt.Printf("    %s\n", ui.ValueStyle.Render("seclab scan -u https://example.com -classes sqli,xss"))
	fmt.Printf("    %s\n", ui.ValueStyle.Render("seclab fuzz -u https://example.com/search -point query:q -set xss"))
	fmt.Println()
}

func fatal(msg string, err error) {
	if err != nil {
		ui.PrintError(fmt.Sprintf("%s: %v", msg, err))
	} else {
		ui.PrintError(msg)
	}
	os.Exit(1)
}
