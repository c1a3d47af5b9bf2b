package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrAppNameIsEmpty means the log section has no app_name.
	ErrAppNameIsEmpty = errors.New("log app name is required")

	// ErrServiceNameIsEmpty means the log section has no service_name.
	ErrServiceNameIsEmpty = errors.New("log service name is required")
)

// fallback receives events zerolog failed to write.
var fallback io.Writer = os.Stderr //nolint:gochecknoglobals

// ErrorHandler reports a failed write on the fallback writer, since the
// regular log output is the thing that just broke.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintln(fallback, "evo-authz: dropped log event:", err)
}
