package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Tap      func(TapArgs) (Result, error)
	Reset    func(ResetArgs) (Result, error)
	Show     func(ShowArgs) (Result, error)
	Progress func(ProgressArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeTap:
		if handlers.Tap == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "tap handler not configured"}
		}
		return handlers.Tap(*cmd.Tap)
	case TypeReset:
		if handlers.Reset == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "reset handler not configured"}
		}
		return handlers.Reset(*cmd.Reset)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	case TypeProgress:
		if handlers.Progress == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "progress handler not configured"}
		}
		return handlers.Progress(*cmd.Progress)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
