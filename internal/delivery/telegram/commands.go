package telegram

import (
	"errors"
	"strconv"
	"strings"
)

const HelpText = `Commands:
/add - create an alert (three short steps)
/list - list your active alerts
/delete <alert_id> - deactivate an alert
/cancel - abandon the current /add flow
/help - show this help

An alert fires once when the market price crosses your target
(in cents, 48 means 0.48) and is then deactivated.`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseAlertID(args string) (uint, error) {
	idStr := strings.TrimSpace(args)
	if idStr == "" {
		return 0, ErrInvalidArguments
	}
	value, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, ErrInvalidArguments
	}
	return uint(value), nil
}
