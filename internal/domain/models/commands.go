package models

import (
	"strconv"
	"strings"
)

// CommandType enumerates chat commands understood by the dispatcher.
type CommandType string

const (
	CommandCollect CommandType = "collect"
	CommandPack    CommandType = "pack"
	CommandSell    CommandType = "sell"
	CommandStock   CommandType = "stock"
	CommandReport  CommandType = "report"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// commandAliases maps accepted head words to a command.
var commandAliases = map[string]CommandType{
	"collect":   CommandCollect,
	"eggs":      CommandCollect,
	"pack":      CommandPack,
	"box":       CommandPack,
	"sell":      CommandSell,
	"sale":      CommandSell,
	"sales":     CommandSell,
	"stock":     CommandStock,
	"inventory": CommandStock,
	"report":    CommandReport,
	"help":      CommandHelp,
}

// Command represents a parsed instruction extracted from chat text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Arguments keep their
// original case so customer names survive.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}

// ParseQuantity converts user text into a strictly positive egg count.
func ParseQuantity(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return 0, &InvalidInputError{Field: "quantity", Value: value}
	}
	return n, nil
}
