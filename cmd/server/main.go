package main // Entry point package

import (
	"fmt"
	"os"

	"github.com/iliyamo/mentor-marketplace/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
