package pretty

import (
	"fmt"

	"github.com/sbomtools/bomsync/common"
)

// Exit panics with an ExitCode, which the main entry point converts
// into process exit after draining pending log output.
func Exit(code int, format string, rest ...interface{}) error {
	var message string
	if len(rest) > 0 {
		message = fmt.Sprintf(format, rest...)
	} else {
		message = format
	}
	panic(common.ExitCode{Code: code, Message: message})
}

// Guard watches, that only truthful shall pass. Otherwise exits the process.
func Guard(condition bool, code int, format string, rest ...interface{}) {
	if !condition {
		Exit(code, format, rest...)
	}
}

func Ok() error {
	common.Log("%sOK.%s", Green, Reset)
	return nil
}

func Warning(format string, rest ...interface{}) {
	common.Log("%sWarning: %s%s", Yellow, fmt.Sprintf(format, rest...), Reset)
}

func Note(format string, rest ...interface{}) {
	common.Log("%sNote: %s%s", Cyan, fmt.Sprintf(format, rest...), Reset)
}

func Highlight(format string, rest ...interface{}) {
	common.Log("%s%s%s", Bold, fmt.Sprintf(format, rest...), Reset)
}
