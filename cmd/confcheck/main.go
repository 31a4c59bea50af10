// confcheck validates an extraction configuration file before a batch run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/docsift/docsift/internal/config"
)

func main() {
	configPath := flag.String("config", "", "extraction configuration JSON file (required)")
	flag.Parse()

	if *configPath == "" {
		log.Println("ERROR: --config is required")
		log.Println("  usage: confcheck --config extraction_config.json")
		os.Exit(2)
	}

	extractions, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("configuration: FAIL (%v)", err)
	}

	fmt.Printf("configuration: OK (%d configurations)\n", len(extractions))
	for _, ext := range extractions {
		fmt.Printf("  %-30s rules=%d type=%-7s max_length=%d default=%q\n",
			ext.Name, len(ext.Rules), ext.ExpectedType, ext.MaxLength, ext.DefaultNotFound)
	}
}
