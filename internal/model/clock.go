package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

var (
	ErrInvalidClock = errors.New("invalid time of day")
	ErrInvalidDay   = errors.New("invalid day")
)

// Clock время суток с точностью до минуты (минуты от полуночи)
type Clock int

// NewClock создаёт Clock из часов и минут
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidClock, hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// MustClock как NewClock, но паникует на некорректном значении
func MustClock(hour, minute int) Clock {
	c, err := NewClock(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf отбрасывает дату, секунды и всё что меньше
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// ParseClock принимает HH:MM, HH:MM:SS[.ffffff] или дату-время ISO-8601
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidClock)
	}

	if strings.ContainsAny(s, "T ") {
		return parseClockDateTime(s)
	}

	// Дробная часть секунд (09:30:00.000000) отбрасывается
	fraction := false
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if !allDigits(s[i+1:]) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		s, fraction = s[:i], true
	}

	parts := strings.Split(s, ":")
	if (len(parts) != 2 && len(parts) != 3) || (fraction && len(parts) != 3) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		values[i] = v
	}

	// Секунды проверяем, но отбрасываем
	if len(values) == 3 && (values[2] < 0 || values[2] > 59) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	return NewClock(values[0], values[1])
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Valid проверяет что значение в пределах суток
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// Add сдвигает время; результат может выйти за пределы суток, проверяйте Valid
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// On возвращает момент времени в указанный день
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidClock, data)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// dateTimeLayouts ISO-8601 с датой: RFC 3339, без смещения (timestamp
// из PostgreSQL) и текстовый вид timestamptz со смещением +00
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999-07",
}

// parseClockDateTime берёт часы и минуты в смещении самой метки
func parseClockDateTime(s string) (Clock, error) {
	// PostgreSQL разделяет дату и время пробелом
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

const DayLayout = "2006-01-02"

// ParseDay разбирает дату в формате YYYY-MM-DD (полночь UTC)
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return day, nil
}

// DayOf возвращает календарный день момента t (полночь UTC)
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay сравнивает только календарные даты
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func FormatDay(day time.Time) string {
	return day.Format(DayLayout)
}
