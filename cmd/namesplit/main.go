package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/kerem-kaynak/authorname/cmd/namesplit/commands"
	"github.com/kerem-kaynak/authorname/internal/logger"
)

func main() {
	defer logger.Cleanup()

	if err := commands.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
