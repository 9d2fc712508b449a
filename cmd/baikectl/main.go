// Command baikectl runs extraction, enrichment and term lookup from the
// command line, and serves them as MCP tools over stdio.
package main

import (
	"log"
	"os"
)

var version = "dev"

func main() {
	if err := newCLI(defaultLoader).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
