package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/seclab/seclab/pkg/payloads"
	"github.com/seclab/seclab/pkg/ui"
)

func runPayloads() {
	fs := flag.NewFlagSet("payloads", flag.ExitOnError)
	show := fs.String("show", "", "Print every payload in the given set")
	noColor := fs.Bool("nc", false, "No color output")
	fs.Parse(os.Args[2:])

	ui.SetNoColor(*noColor)
	reg := payloads.NewRegistry()

	if *show != "" {
		set, err := reg.Get(*show)
		if err != nil {
			fatal("payloads", err)
		}
		for _, p := range set.Payloads {
			fmt.Println(p)
		}
		return
	}

	ui.PrintBanner()
	ui.PrintSection("Payload Sets")

	var rows [][]string
	for _, set := range reg.List() {
		rows = append(rows, []string{
			set.ID, set.Name, string(set.Category), strconv.Itoa(len(set.Payloads)),
		})
	}
	if err := ui.Table(os.Stdout, []string{"ID", "Name", "Category", "Payloads"}, rows); err != nil {
		fatal("render table", err)
	}
}
