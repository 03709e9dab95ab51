package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/seclab/seclab/pkg/apischema"
	"github.com/seclab/seclab/pkg/ui"
)

func runSchema() {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	openapiFile := fs.String("openapi", "", "OpenAPI document (JSON or YAML)")
	graphqlFile := fs.String("graphql", "", "GraphQL introspection response (JSON)")
	target := fs.String("u", "", "Target URL attached to GraphQL findings")
	noColor := fs.Bool("nc", false, "No color output")
	fs.Parse(os.Args[2:])

	ui.SetNoColor(*noColor)

	switch {
	case *openapiFile != "":
		analyzeOpenAPI(*openapiFile)
	case *graphqlFile != "":
		analyzeGraphQL(*graphqlFile, *target)
	default:
		fatal("schema: one of -openapi or -graphql is required", nil)
	}
}

func analyzeOpenAPI(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("schema: read document", err)
	}
	endpoints, err := apischema.ParseOpenAPI(data)
	if err != nil {
		fatal("schema: parse document", err)
	}

	ui.PrintBanner()
	ui.PrintSection("OpenAPI Endpoints")

	var rows [][]string
	for _, ep := range endpoints {
		params := make([]string, 0, len(ep.Parameters))
		for _, p := range ep.Parameters {
			name := p.Name
			if p.Required {
				name += "*"
			}
			params = append(params, fmt.Sprintf("%s(%s)", name, p.In))
		}
		rows = append(rows, []string{ep.Method, ep.Path, strings.Join(params, " ")})
	}
	if err := ui.Table(os.Stdout, []string{"Method", "Path", "Parameters"}, rows); err != nil {
		fatal("render table", err)
	}
	fmt.Printf("\n%d endpoint(s)\n", len(endpoints))
}

func analyzeGraphQL(path, target string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("schema: read introspection", err)
	}
	findings, err := apischema.AnalyzeIntrospection(target, data)
	if err != nil {
		fatal("schema: analyze introspection", err)
	}

	ui.PrintBanner()
	ui.PrintSection("GraphQL Introspection Analysis")

	if len(findings) == 0 {
		ui.PrintSuccess("introspection disabled, nothing exposed")
		return
	}
	for _, f := range findings {
		ui.PrintFinding(string(f.Severity), string(f.Type), f.Title, f.Evidence)
	}
	fmt.Printf("\n%d finding(s)\n", len(findings))
}
