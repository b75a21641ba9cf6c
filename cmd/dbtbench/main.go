package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Comparison completed with no regressions
	ExitRegression = 1 // Comparison completed but regressions were detected
	ExitError      = 2 // Configuration or runtime error
)

// RegressionError indicates that the comparison ran successfully,
// but one or more models regressed beyond the configured thresholds.
type RegressionError struct {
	Message string
}

func (e *RegressionError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var regressionErr *RegressionError
		if errors.As(err, &regressionErr) {
			os.Exit(ExitRegression)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
