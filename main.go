package main

import (
	"context"
	"os"

	"github.com/ardnew/san/cli"
	"github.com/ardnew/san/log"
)

func main() {
	ctx := context.Background()

	if err := cli.Run(ctx, os.Exit, os.Args[1:]...); err != nil {
		log.Report(ctx, "run failed", err)
		os.Exit(1)
	}
}
