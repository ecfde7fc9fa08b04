package common

import (
	"fmt"
	"runtime"
	"time"
)

const (
	DefaultApiPath = `/api/v1`
)

var (
	Version        string
	DebugEnabled   bool
	TraceEnabled   bool
	SilentEnabled  bool
	DryRun         bool
	LogLinenumbers bool
	When           int64
)

func init() {
	When = time.Now().Unix()
	Version = `v1.4.0`
}

func DebugFlag() bool {
	return DebugEnabled || TraceEnabled
}

func TraceFlag() bool {
	return TraceEnabled
}

func Silent() bool {
	return SilentEnabled
}

func UserAgent() string {
	return fmt.Sprintf("bomsync/%s (%s %s)", Version, runtime.GOOS, runtime.GOARCH)
}
