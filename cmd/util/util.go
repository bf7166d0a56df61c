package util

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/peripherylabs/agentsync/pkg/errors"
	"github.com/peripherylabs/agentsync/pkg/version"
)

// HandleFatalError prints a message for an error that the process can't
// recover from, and exits. Friendly errors are printed verbatim, without
// the wrapping context.
func HandleFatalError(err error) {
	if friendly, ok := errors.RootCause(err).(errors.FriendlyError); ok {
		fmt.Fprintln(os.Stderr, friendly.FriendlyMessage())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// HandlePanic recovers from a panic in the main process, logs it along
// with the running version, and exits non-zero. Deferred from main so
// users get a report instead of a raw stack dump.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	log.WithField("version", version.Version).Errorf(
		"agentsync crashed: %v\n\n%s", r, debug.Stack())
	os.Exit(1)
}
