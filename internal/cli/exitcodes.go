package cli

import "fmt"

// Exit codes for pyfmt.
const (
	// ExitSuccess means nothing needed reformatting and nothing failed.
	ExitSuccess = 0

	// ExitWouldReformat means --check found files to change, or an
	// input file could not be parsed.
	ExitWouldReformat = 1

	// ExitUsage indicates invalid command line usage.
	ExitUsage = 2

	// ExitInternalError means an equivalence or stability self check
	// failed. The inputs were left untouched.
	ExitInternalError = 123
)

// exitError carries a specific process exit code out of a RunE without
// extra logging.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode extracts the intended process status from an Execute error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return ExitUsage
}
