package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
)

var errUsage = errors.New("wrong number of arguments")

// commandArgs отбрасывает саму команду (в том числе /cmd@botname)
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseRegisterArgs: /register expert|peer <name>
func parseRegisterArgs(args []string) (model.Group, string, error) {
	if len(args) < 2 {
		return "", "", errUsage
	}
	group, err := model.ParseGroup(args[0])
	if err != nil {
		return "", "", err
	}
	return group, strings.Join(args[1:], " "), nil
}

// parseDayArg понимает YYYY-MM-DD, today, tomorrow; без аргумента сегодня
func parseDayArg(args []string, now time.Time) (time.Time, error) {
	if len(args) > 1 {
		return time.Time{}, errUsage
	}
	if len(args) == 0 {
		return model.DayOf(now), nil
	}

	switch strings.ToLower(args[0]) {
	case "today":
		return model.DayOf(now), nil
	case "tomorrow":
		return model.DayOf(now).AddDate(0, 0, 1), nil
	}
	return model.ParseDay(args[0])
}

// parseAddSlotArgs: /addslot <day> <HH:MM> <HH:MM>
func parseAddSlotArgs(args []string, now time.Time) (time.Time, model.Clock, model.Clock, error) {
	if len(args) != 3 {
		return time.Time{}, 0, 0, errUsage
	}

	day, err := parseDayArg(args[:1], now)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	start, err := model.ParseClock(args[1])
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	end, err := model.ParseClock(args[2])
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	return day, start, end, nil
}

func parseSlotIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid slot id %q", args[0])
	}
	return id, nil
}
