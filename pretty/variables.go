package pretty

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sbomtools/bomsync/common"
)

var (
	Colorless   bool
	Disabled    bool
	Interactive bool
	White       string
	Grey        string
	Red         string
	Green       string
	Yellow      string
	Cyan        string
	Reset       string
	Bold        string
	Faint       string
)

func csi(value string) string {
	return fmt.Sprintf("\033[%s", value)
}

func Setup() {
	stdout := isatty.IsTerminal(os.Stdout.Fd())
	stderr := isatty.IsTerminal(os.Stderr.Fd())
	Interactive = stdout && stderr

	if os.Getenv("NO_COLOR") != "" {
		Colorless = true
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		Colorless = true
	}

	common.Trace("Interactive mode enabled: %v; colors enabled: %v", Interactive, !Colorless)

	if stdout && !Colorless && !Disabled {
		White = csi("97m")
		Grey = csi("90m")
		Red = csi("91m")
		Green = csi("92m")
		Yellow = csi("93m")
		Cyan = csi("96m")
		Reset = csi("0m")
		Bold = csi("1m")
		Faint = csi("2m")
	}
}
