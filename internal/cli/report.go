package cli

import (
	"errors"
	"io/fs"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/chartfile"
)

// describe maps a load, build or runtime error onto its CLI error code and
// exit code.
func describe(err error) (CLIError, int) {
	var (
		be *statechart.BuildError
		re *statechart.RuntimeError
		fe *chartfile.Error
	)
	switch {
	case errors.As(err, &be):
		return CLIError{Code: string(be.Code), Message: be.Message, State: be.StateID}, ExitFailure
	case errors.As(err, &re):
		msg := re.Message
		if re.Err != nil {
			msg += ": " + re.Err.Error()
		}
		return CLIError{Code: string(re.Code), Message: msg, State: re.StateID}, ExitFailure
	case errors.As(err, &fe):
		return CLIError{Code: "DOCUMENT", Message: fe.Error()}, ExitFailure
	case errors.Is(err, chartfile.ErrSyntax):
		return CLIError{Code: "SYNTAX", Message: err.Error()}, ExitFailure
	case errors.Is(err, chartfile.ErrUnknownFormat):
		return CLIError{Code: "FORMAT", Message: err.Error()}, ExitCommandError
	case errors.Is(err, fs.ErrNotExist):
		return CLIError{Code: "NOT_FOUND", Message: err.Error()}, ExitCommandError
	}
	return CLIError{Code: "ERROR", Message: err.Error()}, ExitFailure
}

// report prints err through f and returns the matching ExitError.
func report(f *OutputFormatter, err error) error {
	cliErr, code := describe(err)
	_ = f.Error(cliErr)
	return WrapExitError(code, cliErr.Code, err)
}
