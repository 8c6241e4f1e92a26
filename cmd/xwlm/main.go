package main

import (
	"context"
	"fmt"
	"os"

	"github.com/1broseidon/xwlm/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "xwlm: %v\n", err)
		os.Exit(1)
	}
}
