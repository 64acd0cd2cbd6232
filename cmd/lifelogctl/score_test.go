package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/lifelog/backend/internal/metrics"
	"example.com/lifelog/backend/internal/tracker"
)

const weekJSON = `{
  "week_start": "2024-01-15T00:00:00Z",
  "daily_logs": [
    {"date": "2024-01-15T00:00:00Z", "logged": true, "tasks_markdown": "- [x] squat #gym", "gym_session": false, "calories_tracked": true},
    {"date": "2024-01-16T00:00:00Z", "logged": true, "tasks_markdown": "", "gym_session": true, "weight": 80.5, "calories_tracked": false},
    {"date": "2024-01-25T00:00:00Z", "logged": true, "tasks_markdown": "", "gym_session": true, "calories_tracked": true}
  ],
  "todos": [],
  "expenses": [],
  "incomes": []
}`

// TestDecodeWeekFillsWeekEnd проверяет заполнение week_end воскресеньем недели.
func TestDecodeWeekFillsWeekEnd(t *testing.T) {
	data, err := decodeWeek(strings.NewReader(weekJSON))
	require.NoError(t, err)

	assert.Equal(t, "2024-01-21", data.WeekEnd.Format("2006-01-02"))
	assert.Len(t, data.DailyLogs, 3)
}

// TestDecodeWeekRejectsUnknownFields проверяет отклонение неизвестных полей.
func TestDecodeWeekRejectsUnknownFields(t *testing.T) {
	_, err := decodeWeek(strings.NewReader(`{"week_start": "2024-01-15T00:00:00Z", "mood": 5}`))
	assert.Error(t, err)
}

// TestDecodeWeekRequiresStart проверяет обязательность week_start.
func TestDecodeWeekRequiresStart(t *testing.T) {
	_, err := decodeWeek(strings.NewReader(`{"todos": []}`))
	assert.ErrorIs(t, err, errMissingWeekStart)
}

// TestDecodeWeekRejectsNonMondayStart проверяет отклонение week_start не в понедельник.
func TestDecodeWeekRejectsNonMondayStart(t *testing.T) {
	_, err := decodeWeek(strings.NewReader(`{"week_start": "2024-01-17T00:00:00Z"}`))
	assert.ErrorIs(t, err, tracker.ErrNotMonday)
}

// TestScoreWeekIgnoresDaysOutsideWeek проверяет что дни вне недели не учитываются.
func TestScoreWeekIgnoresDaysOutsideWeek(t *testing.T) {
	data, err := decodeWeek(strings.NewReader(weekJSON))
	require.NoError(t, err)

	result := scoreWeek(data, metrics.DefaultTargets())

	assert.Equal(t, "2024-01-15", result.WeekStart)
	assert.Equal(t, 2, result.Input.Fitness.Sessions)
	assert.Equal(t, 2, result.Input.Fitness.LoggedDays)
	assert.Equal(t, 1, result.Input.Fitness.CaloriesTrackedDays)
	assert.True(t, result.Input.Fitness.HasWeight)
	assert.InDelta(t, result.Scores.Overall(), result.Overall, 1e-9)
}

// TestWriteScoreTable проверяет табличный вывод оценок.
func TestWriteScoreTable(t *testing.T) {
	data, err := decodeWeek(strings.NewReader(weekJSON))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeScoreTable(&out, scoreWeek(data, metrics.DefaultTargets())))

	text := out.String()
	for _, axis := range metrics.Axes {
		assert.Contains(t, text, string(axis))
	}
	assert.Contains(t, text, "overall")
}

// TestVersionCommand проверяет вывод команды version.
func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "lifelogctl version 0.1.0 (build: dev)\n", out.String())
}
