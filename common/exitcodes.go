package common

type ExitCode struct {
	Code    int
	Message string
}

func (it ExitCode) ShowMessage() {
	Stdout("%s\n", it.Message)
}
