package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/tracker"
)

// TestParseWithFrontmatter проверяет разбор файла журнала с frontmatter.
func TestParseWithFrontmatter(t *testing.T) {
	content := "---\nlogged: false\ngym: true\nweight: 81.4\ncalories: true\n---\n\n- [x] run #gym\n"

	entry, err := Parse("journal/2024/2024-01-15.md", []byte(content))
	require.NoError(t, err)

	date, _ := models.ParseDate("2024-01-15")
	assert.Equal(t, date, entry.Date)
	assert.Equal(t, "- [x] run #gym\n", entry.Body)

	input := entry.Input()
	assert.False(t, input.Logged)
	assert.True(t, input.GymSession)
	assert.True(t, input.CaloriesTracked)
	require.NotNil(t, input.Weight)
	assert.InDelta(t, 81.4, *input.Weight, 1e-9)
}

// TestParseWithoutFrontmatter проверяет что файл без frontmatter считается залогированным днем.
func TestParseWithoutFrontmatter(t *testing.T) {
	entry, err := Parse("2024-01-16.md", []byte("- [ ] stretch #fitness-todo"))
	require.NoError(t, err)

	input := entry.Input()
	assert.True(t, input.Logged)
	assert.Nil(t, input.Weight)
	assert.Equal(t, "- [ ] stretch #fitness-todo", input.TasksMarkdown)
}

// TestParseEmptyFrontmatter проверяет разбор пустого frontmatter.
func TestParseEmptyFrontmatter(t *testing.T) {
	entry, err := Parse("2024-01-16.md", []byte("---\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "body", entry.Body)
}

// TestParseErrors проверяет ошибки разбора имени и содержимого файла.
func TestParseErrors(t *testing.T) {
	_, err := Parse("notes.md", []byte("body"))
	assert.Error(t, err)

	_, err = Parse("2024-01-16.md", []byte("---\ngym: true\nbody"))
	assert.ErrorIs(t, err, ErrNoFrontmatterEnd)

	_, err = Parse("2024-01-16.md", []byte("---\ngym: [\n---\n"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// TestDiscoverSortsByDateAndSkipsUndated проверяет сортировку файлов по дате и пропуск файлов без даты.
func TestDiscoverSortsByDateAndSkipsUndated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024", "02", "2024-02-01.md"), "")
	writeFile(t, filepath.Join(dir, "2024", "01", "2024-01-31.md"), "")
	writeFile(t, filepath.Join(dir, "README.md"), "")

	paths, err := Discover(filepath.Join(dir, "**", "*.md"))
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, "2024-01-31.md", filepath.Base(paths[0]))
	assert.Equal(t, "2024-02-01.md", filepath.Base(paths[1]))
}

type recordingSaver struct {
	dates []time.Time
}

func (s *recordingSaver) Save(_ context.Context, _ uuid.UUID, date time.Time, input tracker.DailyLogInput) (tracker.DailyLogResult, error) {
	s.dates = append(s.dates, date)
	return tracker.DailyLogResult{TodosCreated: len(tasksIn(input.TasksMarkdown))}, nil
}

func tasksIn(markdown string) []string {
	if markdown == "" {
		return nil
	}
	return []string{markdown}
}

// TestImport проверяет импорт найденных файлов журнала.
func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024-01-15.md"), "- [ ] a #finance-todo")
	writeFile(t, filepath.Join(dir, "2024-01-16.md"), "")

	paths, err := Discover(filepath.Join(dir, "*.md"))
	require.NoError(t, err)

	saver := &recordingSaver{}
	summary, err := Import(context.Background(), saver, uuid.New(), paths)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.TodosCreated)
	require.Len(t, saver.dates, 2)
	assert.True(t, saver.dates[0].Before(saver.dates[1]))
}
