package main

import (
	"flag"
	"log"
	"os"

	scenariocmd "github.com/arquebus/battlegrid/internal/cmd/scenario"
)

// main validates battle-map scenario files.
func main() {
	log.SetPrefix("[SCENARIO] ")
	if err := scenariocmd.Run(flag.CommandLine, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
