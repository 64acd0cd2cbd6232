package tracker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/lifelog/backend/internal/models"
)

func todo(text string, label models.TodoLabel, source string, completed bool) models.TodoItem {
	item := models.TodoItem{ID: uuid.New(), Text: text, Label: label, SourceDate: day(source), Completed: completed}
	if completed {
		d := day(source)
		item.CompletedDate = &d
		item.ClosedByLog = true
	}
	return item
}

// toggledClosed возвращает todo, закрытое вручную в указанный день.
func toggledClosed(text string, label models.TodoLabel, source, closedOn string) models.TodoItem {
	item := todo(text, label, source, true)
	d := day(closedOn)
	item.CompletedDate = &d
	item.ClosedByLog = false
	return item
}

// TestDiffTodosCreatesAndDeletes проверяет создание новых и удаление пропавших todo.
func TestDiffTodosCreatesAndDeletes(t *testing.T) {
	existing := []models.TodoItem{
		todo("read chapter", models.TodoLabelLearning, "2024-01-15", false),
		todo("call bank", models.TodoLabelFinance, "2024-01-15", false),
	}
	extracted := []models.TodoItem{
		{Text: "read chapter", Label: models.TodoLabelLearning},
		{Text: "write post", Label: models.TodoLabelProducer},
	}

	changes := DiffTodos(day("2024-01-15"), extracted, existing, nil)

	require.Len(t, changes.Create, 1)
	assert.Equal(t, "write post", changes.Create[0].Text)
	assert.Equal(t, day("2024-01-15"), changes.Create[0].SourceDate)
	assert.Equal(t, []uuid.UUID{existing[1].ID}, changes.Delete)
	assert.Empty(t, changes.Complete)
}

// TestDiffTodosMatchesOnTextAndLabel проверяет сопоставление todo по тексту и метке.
func TestDiffTodosMatchesOnTextAndLabel(t *testing.T) {
	existing := []models.TodoItem{todo("stretch", models.TodoLabelFitness, "2024-01-15", false)}
	extracted := []models.TodoItem{{Text: "stretch", Label: models.TodoLabelRelationship}}

	changes := DiffTodos(day("2024-01-15"), extracted, existing, nil)

	assert.Len(t, changes.Create, 1)
	assert.Len(t, changes.Delete, 1)
}

// TestDiffTodosTogglesCompletion проверяет переключение выполнения todo того же дня.
func TestDiffTodosTogglesCompletion(t *testing.T) {
	existing := []models.TodoItem{todo("stretch", models.TodoLabelFitness, "2024-01-15", false)}
	extracted := []models.TodoItem{{Text: "Stretch", Label: models.TodoLabelFitness, Completed: true}}

	changes := DiffTodos(day("2024-01-15"), extracted, existing, nil)

	require.Len(t, changes.Complete, 1)
	assert.True(t, changes.Complete[0].Completed)
	require.NotNil(t, changes.Complete[0].CompletedDate)
	assert.Equal(t, day("2024-01-15"), *changes.Complete[0].CompletedDate)
	assert.Equal(t, 1, ClosedCount(changes))
}

// TestDiffTodosClosesCarriedTodo проверяет закрытие перенесенного todo.
func TestDiffTodosClosesCarriedTodo(t *testing.T) {
	carried := []models.TodoItem{todo("renew passport", models.TodoLabelFinance, "2024-01-10", false)}
	extracted := []models.TodoItem{{Text: "renew passport", Label: models.TodoLabelFinance, Completed: true}}

	changes := DiffTodos(day("2024-01-15"), extracted, nil, carried)

	assert.Empty(t, changes.Create)
	require.Len(t, changes.Complete, 1)
	assert.Equal(t, carried[0].ID, changes.Complete[0].ID)
	assert.Equal(t, day("2024-01-15"), *changes.Complete[0].CompletedDate)
}

// TestDiffTodosOpenCarriedTodoIsNotDuplicated проверяет что открытый перенесенный todo не дублируется.
func TestDiffTodosOpenCarriedTodoIsNotDuplicated(t *testing.T) {
	carried := []models.TodoItem{todo("renew passport", models.TodoLabelFinance, "2024-01-10", false)}
	extracted := []models.TodoItem{{Text: "renew passport", Label: models.TodoLabelFinance}}

	changes := DiffTodos(day("2024-01-15"), extracted, nil, carried)

	assert.True(t, changes.Empty())
}

// TestDiffTodosReopensCarriedWhenLineRemoved проверяет повторное открытие перенесенного todo после удаления строки.
func TestDiffTodosReopensCarriedWhenLineRemoved(t *testing.T) {
	closed := todo("renew passport", models.TodoLabelFinance, "2024-01-10", true)
	d := day("2024-01-15")
	closed.CompletedDate = &d

	changes := DiffTodos(day("2024-01-15"), nil, nil, []models.TodoItem{closed})

	require.Len(t, changes.Complete, 1)
	assert.False(t, changes.Complete[0].Completed)
	assert.Nil(t, changes.Complete[0].CompletedDate)
	assert.Equal(t, 0, ClosedCount(changes))
}

// TestDiffTodosKeepsManuallyClosedCarriedTodo проверяет, что сохранение записи не
// отменяет закрытие через переключение в тот же день.
func TestDiffTodosKeepsManuallyClosedCarriedTodo(t *testing.T) {
	carried := []models.TodoItem{toggledClosed("buy book", models.TodoLabelLearning, "2024-02-01", "2024-02-05")}

	changes := DiffTodos(day("2024-02-05"), nil, nil, carried)
	assert.True(t, changes.Empty(), "unrelated log must not reopen a toggled todo")

	stillOpenLine := []models.TodoItem{{Text: "buy book", Label: models.TodoLabelLearning}}
	changes = DiffTodos(day("2024-02-05"), stillOpenLine, nil, carried)
	assert.True(t, changes.Empty(), "unchecked line must not reopen a toggled todo")
}

// TestDiffTodosKeepsManuallyClosedSameDayTodo проверяет то же для todo текущего дня.
func TestDiffTodosKeepsManuallyClosedSameDayTodo(t *testing.T) {
	existing := []models.TodoItem{toggledClosed("stretch", models.TodoLabelFitness, "2024-02-05", "2024-02-05")}
	extracted := []models.TodoItem{{Text: "stretch", Label: models.TodoLabelFitness}}

	changes := DiffTodos(day("2024-02-05"), extracted, existing, nil)

	assert.True(t, changes.Empty())
}

// TestDiffTodosMarksLogClosures проверяет, что закрытия из записи помечены ClosedByLog.
func TestDiffTodosMarksLogClosures(t *testing.T) {
	carried := []models.TodoItem{todo("renew passport", models.TodoLabelFinance, "2024-01-10", false)}
	extracted := []models.TodoItem{
		{Text: "renew passport", Label: models.TodoLabelFinance, Completed: true},
		{Text: "pay rent", Label: models.TodoLabelFinance, Completed: true},
	}

	changes := DiffTodos(day("2024-01-15"), extracted, nil, carried)

	require.Len(t, changes.Complete, 1)
	assert.True(t, changes.Complete[0].ClosedByLog)
	require.Len(t, changes.Create, 1)
	assert.True(t, changes.Create[0].ClosedByLog)
}

// TestDiffTodosIsIdempotent проверяет что повторный diff пуст.
func TestDiffTodosIsIdempotent(t *testing.T) {
	closed := todo("renew passport", models.TodoLabelFinance, "2024-01-10", true)
	d := day("2024-01-15")
	closed.CompletedDate = &d
	existing := []models.TodoItem{todo("stretch", models.TodoLabelFitness, "2024-01-15", false)}
	extracted := []models.TodoItem{
		{Text: "renew passport", Label: models.TodoLabelFinance, Completed: true},
		{Text: "stretch", Label: models.TodoLabelFitness},
	}

	changes := DiffTodos(day("2024-01-15"), extracted, existing, []models.TodoItem{closed})

	assert.True(t, changes.Empty())
}

// TestDiffTodosDuplicateLines проверяет обработку повторяющихся строк.
func TestDiffTodosDuplicateLines(t *testing.T) {
	existing := []models.TodoItem{todo("pushups", models.TodoLabelFitness, "2024-01-15", false)}
	extracted := []models.TodoItem{
		{Text: "pushups", Label: models.TodoLabelFitness},
		{Text: "pushups", Label: models.TodoLabelFitness},
	}

	changes := DiffTodos(day("2024-01-15"), extracted, existing, nil)

	assert.Len(t, changes.Create, 1)
	assert.Empty(t, changes.Delete)
}
