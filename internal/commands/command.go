package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/sakina/internal/model"
)

type Type string

const (
	TypeTap      Type = "tap"
	TypeReset    Type = "reset"
	TypeShow     Type = "show"
	TypeProgress Type = "progress"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TapArgs taps the tasbih counter when ItemID is empty.
type TapArgs struct {
	Section model.Section
	ItemID  string
}

// ResetArgs clears one section, or everything when All is set.
type ResetArgs struct {
	Section model.Section
	All     bool
}

// ShowArgs switches the view. An empty Section means the home screen.
type ShowArgs struct {
	Section model.Section
}

type ProgressArgs struct{}

type Command struct {
	Type     Type
	Raw      string
	Tap      *TapArgs
	Reset    *ResetArgs
	Show     *ShowArgs
	Progress *ProgressArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeTap:
		return parseTap(input, args)
	case TypeReset:
		return parseReset(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeProgress:
		return Command{Type: TypeProgress, Raw: input, Progress: &ProgressArgs{}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseTap(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tap requires a section"}
	}
	section, err := parseSectionArg(args[0])
	if err != nil {
		return Command{}, err
	}
	item := ""
	if len(args) > 1 {
		item = strings.TrimSpace(args[1])
	}
	switch section.Kind() {
	case model.KindItems:
		if item == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("tap %s requires an item id", section)}
		}
	case model.KindCounter:
		if item != "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tap tasbih takes no item"}
		}
	}
	return Command{Type: TypeTap, Raw: raw, Tap: &TapArgs{Section: section, ItemID: item}}, nil
}

func parseReset(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reset requires a section or all"}
	}
	if strings.EqualFold(args[0], "all") {
		return Command{Type: TypeReset, Raw: raw, Reset: &ResetArgs{All: true}}, nil
	}
	section, err := parseSectionArg(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeReset, Raw: raw, Reset: &ResetArgs{Section: section}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 || strings.EqualFold(args[0], "home") {
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{}}, nil
	}
	section, err := parseSectionArg(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Section: section}}, nil
}

func parseSectionArg(arg string) (model.Section, error) {
	section, err := model.ParseSection(arg)
	if err != nil {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown section: %s", arg)}
	}
	return section, nil
}
