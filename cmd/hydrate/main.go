package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process status: 2 for settings and template
// errors, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var parseErr *hydraterrors.ParseError
	var validationErr *hydraterrors.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return 2
	}
	return 1
}
