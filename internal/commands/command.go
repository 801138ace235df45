// Package commands parses and dispatches the command palette: quick task
// entry, reset mode switching, goal progress, history queries and snapshot
// export.
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/taskcycle/internal/model"
	"github.com/sandeepkv93/taskcycle/internal/store"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeGoal     Type = "goal"
	TypeMode     Type = "mode"
	TypeProgress Type = "progress"
	TypeHistory  Type = "history"
	TypeExport   Type = "export"
	TypeImport   Type = "import"
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

type AddArgs struct {
	Type  model.TaskType
	Title string
	// Target is set when the title ends in "=N", the quick syntax for a
	// quantifiable goal.
	Target int
}

// GoalArgs carries a monthly goal entered as
// "goal <title>; <description>; <week1>|<week2>|...".
type GoalArgs struct {
	Title       string
	Description string
	WeekTexts   []string
}

type ModeArgs struct {
	Mode store.ResetMode
}

type ProgressArgs struct {
	ID    string
	Value int
}

type HistoryArgs struct {
	// Action filters the log when non-empty.
	Action model.HistoryAction
}

type ExportArgs struct {
	Path string
}

type ImportArgs struct {
	Path string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Goal     *GoalArgs
	Mode     *ModeArgs
	Progress *ProgressArgs
	History  *HistoryArgs
	Export   *ExportArgs
	Import   *ImportArgs
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
	case TypeAdd:
		return parseAdd(input, args)
	case TypeGoal:
		return parseGoal(input, args)
	case TypeMode:
		return parseMode(input, args)
	case TypeProgress:
		return parseProgress(input, args)
	case TypeHistory:
		return parseHistory(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a type and a title"}
	}
	taskType := model.TaskType(strings.ToLower(args[0]))
	if !taskType.IsValid() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown task type: %s", args[0])}
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	target := 0
	if eq := strings.LastIndex(title, "="); eq > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(title[eq+1:])); err == nil && n > 0 {
			target = n
			title = strings.TrimSpace(title[:eq])
		}
	}
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	if taskType == model.TypeGoal && target == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "goal tasks need a target, e.g. add goal read pages=20"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Type: taskType, Title: title, Target: target}}, nil
}

func parseGoal(raw string, args []string) (Command, error) {
	usage := "goal requires title; description; week milestones, e.g. goal Ship it; finish the release; plan|build|test|launch"
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: usage}
	}
	segments := strings.SplitN(strings.Join(args, " "), ";", 3)
	if len(segments) < 3 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: usage}
	}
	title := strings.TrimSpace(segments[0])
	description := strings.TrimSpace(segments[1])
	if title == "" || description == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: usage}
	}
	weeks := strings.Split(segments[2], "|")
	for i := range weeks {
		weeks[i] = strings.TrimSpace(weeks[i])
	}
	return Command{Type: TypeGoal, Raw: raw, Goal: &GoalArgs{Title: title, Description: description, WeekTexts: weeks}}, nil
}

func parseMode(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "mode requires remove or keep"}
	}
	mode := store.ResetMode(strings.ToLower(args[0]))
	if !mode.IsValid() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown reset mode: %s", args[0])}
	}
	return Command{Type: TypeMode, Raw: raw, Mode: &ModeArgs{Mode: mode}}, nil
}

func parseProgress(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "progress requires an id and a value"}
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("progress value is not a number: %s", args[1])}
	}
	return Command{Type: TypeProgress, Raw: raw, Progress: &ProgressArgs{ID: args[0], Value: value}}, nil
}

func parseHistory(raw string, args []string) (Command, error) {
	h := &HistoryArgs{}
	if len(args) > 0 {
		action := model.HistoryAction(strings.ToLower(args[0]))
		if !action.IsValid() {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown history action: %s", args[0])}
		}
		h.Action = action
	}
	return Command{Type: TypeHistory, Raw: raw, History: h}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a file path"}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: args[0]}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: args[0]}}, nil
}
