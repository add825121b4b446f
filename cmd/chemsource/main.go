// CLI entry point for ChemSource.
package main

import (
	"context"
	"os"

	"github.com/turtacn/ChemSource/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
