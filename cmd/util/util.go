package util

import (
	"fmt"
	"os"

	"github.com/treesync/treesync/pkg/errors"
)

// HandleFatalError prints the user-facing version of err and exits with a
// non-zero status. It's meant for errors that the command can't recover
// from, before or instead of making any filesystem changes.
func HandleFatalError(err error) {
	fmt.Fprintln(os.Stderr, errors.GetPrintableMessage(err))
	os.Exit(1)
}

// HandlePanic converts panics into a non-zero exit after printing the
// failure, so that crashes in the CLI still produce a usable message.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "treesync crashed: %v\n", r)
	os.Exit(1)
}
