package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := initApp()
	if err := app.cliCmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
