package main

import (
	"fmt"
	"os"

	"github.com/tandahq/tanda/internal/client/app"
)

func main() {
	application, err := app.New(app.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tanda: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tanda: %v\n", err)
		os.Exit(1)
	}
}
