package models

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate разбирает календарную дату в формате YYYY-MM-DD (UTC).
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}

// Day отбрасывает время суток, оставляя дату в UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays сдвигает дату на n календарных дней.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// WeekBounds возвращает понедельник и воскресенье недели, содержащей дату.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := Day(t)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// InRange сообщает, попадает ли дата в закрытый интервал [from, to].
func InRange(t, from, to time.Time) bool {
	day := Day(t)
	return !day.Before(Day(from)) && !day.After(Day(to))
}
