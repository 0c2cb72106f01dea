// Command dokan is the Amar Dokan point-of-sale data layer CLI.
package main

import (
	"context"
	"os"

	"github.com/iir20/amar-dokan-pos-system/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
