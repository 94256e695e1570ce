// Command web runs the simulation HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"stocksim/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	application, err := app.NewApplication(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stocksim: %v\n", err)
		os.Exit(1)
	}
	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "stocksim: %v\n", err)
		os.Exit(1)
	}
}
