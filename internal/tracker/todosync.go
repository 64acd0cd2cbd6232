package tracker

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

type todoKey struct {
	text  string
	label models.TodoLabel
}

func keyOf(todo models.TodoItem) todoKey {
	return todoKey{text: strings.ToLower(strings.TrimSpace(todo.Text)), label: todo.Label}
}

// DiffTodos сравнивает todo, извлеченные из записи за day, с сохраненными.
//
// existing - todo с той же датой источника, сопоставляются по тексту и метке.
// carried - todo из более ранних записей, открытые на начало day; совпадение по
// тексту и метке считается переносом: новая задача не создается, а при отметке
// выполнения закрывается исходная.
//
// Открыть заново можно только todo, закрытое синхронизацией записи (ClosedByLog);
// закрытие через ручное переключение запись не отменяет.
func DiffTodos(day time.Time, extracted, existing, carried []models.TodoItem) repository.TodoChanges {
	day = models.Day(day)
	changes := repository.TodoChanges{
		Create:   make([]models.TodoItem, 0),
		Delete:   make([]uuid.UUID, 0),
		Complete: make([]repository.TodoCompletion, 0),
	}

	sameDay := indexTodos(existing)
	earlier := indexTodos(carried)

	for _, todo := range extracted {
		key := keyOf(todo)

		if match, ok := sameDay.take(key); ok {
			switch {
			case todo.Completed && !match.Completed:
				changes.Complete = append(changes.Complete, completion(match, true, day))
			case !todo.Completed && match.Completed && match.ClosedByLog:
				changes.Complete = append(changes.Complete, completion(match, false, day))
			}
			continue
		}

		if match, ok := earlier.take(key); ok {
			switch {
			case todo.Completed && !closedOn(match, day):
				changes.Complete = append(changes.Complete, completion(match, true, day))
			case !todo.Completed && match.Completed && match.ClosedByLog:
				changes.Complete = append(changes.Complete, completion(match, false, day))
			}
			continue
		}

		created := todo
		created.SourceDate = day
		created.ClosedByLog = todo.Completed
		changes.Create = append(changes.Create, created)
	}

	for _, todo := range sameDay.rest() {
		changes.Delete = append(changes.Delete, todo.ID)
	}
	// Строку с переносом убрали из записи: закрытие этой записью отменяется.
	for _, todo := range earlier.rest() {
		if closedOn(todo, day) && todo.ClosedByLog {
			changes.Complete = append(changes.Complete, completion(todo, false, day))
		}
	}

	return changes
}

// ClosedCount returns how many completions in changes close a todo.
func ClosedCount(changes repository.TodoChanges) int {
	closed := 0
	for _, completion := range changes.Complete {
		if completion.Completed {
			closed++
		}
	}
	return closed
}

func completion(todo models.TodoItem, completed bool, day time.Time) repository.TodoCompletion {
	c := repository.TodoCompletion{ID: todo.ID, Completed: completed, ClosedByLog: completed}
	if completed {
		d := day
		c.CompletedDate = &d
	}
	return c
}

func closedOn(todo models.TodoItem, day time.Time) bool {
	return todo.Completed && todo.CompletedDate != nil && models.Day(*todo.CompletedDate).Equal(day)
}

// todoIndex keeps insertion order so that duplicates are consumed oldest first.
type todoIndex struct {
	order []todoKey
	items map[todoKey][]models.TodoItem
}

func indexTodos(todos []models.TodoItem) *todoIndex {
	idx := &todoIndex{items: make(map[todoKey][]models.TodoItem)}
	for _, todo := range todos {
		key := keyOf(todo)
		if _, ok := idx.items[key]; !ok {
			idx.order = append(idx.order, key)
		}
		idx.items[key] = append(idx.items[key], todo)
	}
	return idx
}

func (idx *todoIndex) take(key todoKey) (models.TodoItem, bool) {
	list := idx.items[key]
	if len(list) == 0 {
		return models.TodoItem{}, false
	}
	idx.items[key] = list[1:]
	return list[0], true
}

func (idx *todoIndex) rest() []models.TodoItem {
	left := make([]models.TodoItem, 0)
	for _, key := range idx.order {
		left = append(left, idx.items[key]...)
	}
	return left
}
