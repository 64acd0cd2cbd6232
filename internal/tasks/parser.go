// Package tasks extracts tagged checkbox tasks from markdown logs.
package tasks

import (
	"regexp"
	"strings"
	"time"

	"example.com/lifelog/backend/internal/models"
)

var (
	checkboxRe = regexp.MustCompile(`^[\s-]*\[([xX ])\]\s*(.*)$`)
	tagRe      = regexp.MustCompile(`#[\w-]+`)
	spacesRe   = regexp.MustCompile(`\s{2,}`)
)

const (
	TagLearn              = "#learn"
	TagReview             = "#review"
	TagNewReview          = "#new-review"
	TagProduce            = "#produce"
	TagRelationship       = "#relationship"
	TagGym                = "#gym"
	TagFamily             = "#family"
	TagConflictResolved   = "#conflict-resolved"
	TagConflictUnresolved = "#conflict-unresolved"

	TagFinanceConcept  = "#finance-concept"
	TagIPSCheck        = "#ips-check"
	TagPortfolioReview = "#portfolio-review"
)

// CountedTags is the fixed tag set counted among completed tasks.
var CountedTags = []string{
	TagLearn,
	TagReview,
	TagNewReview,
	TagProduce,
	TagRelationship,
	TagGym,
	TagFamily,
	TagConflictResolved,
	TagConflictUnresolved,
}

var todoTags = map[string]models.TodoLabel{
	"#learning-todo":     models.TodoLabelLearning,
	"#producer-todo":     models.TodoLabelProducer,
	"#finance-todo":      models.TodoLabelFinance,
	"#fitness-todo":      models.TodoLabelFitness,
	"#relationship-todo": models.TodoLabelRelationship,
}

// Task is one checkbox line.
type Task struct {
	Completed bool
	Text      string
	Tags      []string
}

// HasTag reports whether the task carries the (lowercase) tag.
func (t Task) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// TagCounts maps a counted tag to its occurrences among completed tasks.
type TagCounts map[string]int

// WeeklyTaskData holds the weekly flags derived from completed tasks.
type WeeklyTaskData struct {
	FinanceConceptApplied models.FinanceConcept
	PortfolioReview       models.PortfolioReview
}

// LearningEntry is a completed learning task ready to become a learning item.
type LearningEntry struct {
	Text       string
	SourceType models.LearningSourceType
}

// ParseMarkdownTasks разбирает строки-чекбоксы. Строки без маркера [ ] / [x] пропускаются.
func ParseMarkdownTasks(markdown string) []Task {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	tasks := make([]Task, 0)

	for _, line := range lines {
		match := checkboxRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		text := strings.TrimSpace(match[2])
		tasks = append(tasks, Task{
			Completed: match[1] == "x" || match[1] == "X",
			Text:      text,
			Tags:      extractTags(text),
		})
	}

	return tasks
}

// CountCompletedTasks считает теги фиксированного набора среди выполненных задач.
func CountCompletedTasks(markdown string) TagCounts {
	counts := make(TagCounts, len(CountedTags))
	for _, tag := range CountedTags {
		counts[tag] = 0
	}

	for _, task := range ParseMarkdownTasks(markdown) {
		if !task.Completed {
			continue
		}
		for _, tag := range task.Tags {
			if _, ok := counts[tag]; ok {
				counts[tag]++
			}
		}
	}

	return counts
}

// Add суммирует счетчики другого набора.
func (c TagCounts) Add(other TagCounts) {
	for tag, count := range other {
		c[tag] += count
	}
}

// ExtractTodos возвращает по одной задаче-todo на каждую строку с todo-тегом.
func ExtractTodos(markdown string, sourceDate time.Time) []models.TodoItem {
	todos := make([]models.TodoItem, 0)

	for _, task := range ParseMarkdownTasks(markdown) {
		tag, label, ok := firstTodoTag(task)
		if !ok {
			continue
		}

		text := stripTag(task.Text, tag)
		if text == "" {
			continue
		}

		todo := models.TodoItem{
			Text:       text,
			Label:      label,
			SourceDate: models.Day(sourceDate),
			Completed:  task.Completed,
		}
		if task.Completed {
			completedDate := models.Day(sourceDate)
			todo.CompletedDate = &completedDate
		}
		todos = append(todos, todo)
	}

	return todos
}

// ExtractWeeklyTaskData определяет недельные флаги по выполненным задачам.
func ExtractWeeklyTaskData(markdown string) WeeklyTaskData {
	data := WeeklyTaskData{
		FinanceConceptApplied: models.FinanceConceptNone,
		PortfolioReview:       models.PortfolioReviewNone,
	}

	for _, task := range ParseMarkdownTasks(markdown) {
		if !task.Completed {
			continue
		}
		if task.HasTag(TagFinanceConcept) {
			data.FinanceConceptApplied = models.FinanceConceptImplemented
		}
		if task.HasTag(TagIPSCheck) {
			data.PortfolioReview = models.PortfolioReviewIPSChecked
		} else if task.HasTag(TagPortfolioReview) && data.PortfolioReview != models.PortfolioReviewIPSChecked {
			data.PortfolioReview = models.PortfolioReviewReviewed
		}
	}

	return data
}

// ExtractLearningEntries возвращает выполненные учебные задачи без тегов.
func ExtractLearningEntries(markdown string) []LearningEntry {
	entries := make([]LearningEntry, 0)

	for _, task := range ParseMarkdownTasks(markdown) {
		if !task.Completed {
			continue
		}

		var sourceType models.LearningSourceType
		switch {
		case task.HasTag(TagLearn):
			sourceType = models.LearningSourceLearn
		case task.HasTag(TagReview), task.HasTag(TagNewReview):
			sourceType = models.LearningSourceReview
		default:
			continue
		}

		text := StripTags(task.Text)
		if text == "" {
			continue
		}
		entries = append(entries, LearningEntry{Text: text, SourceType: sourceType})
	}

	return entries
}

// StripTags удаляет все #теги из текста и схлопывает пробелы.
func StripTags(text string) string {
	return normalizeSpaces(tagRe.ReplaceAllString(text, ""))
}

func extractTags(text string) []string {
	matches := tagRe.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		tags = append(tags, strings.ToLower(match))
	}
	return tags
}

func firstTodoTag(task Task) (string, models.TodoLabel, bool) {
	for _, tag := range task.Tags {
		if label, ok := todoTags[tag]; ok {
			return tag, label, true
		}
	}
	return "", "", false
}

// stripTag removes the first occurrence of tag, compared case-insensitively.
func stripTag(text, tag string) string {
	for _, loc := range tagRe.FindAllStringIndex(text, -1) {
		if strings.ToLower(text[loc[0]:loc[1]]) == tag {
			return normalizeSpaces(text[:loc[0]] + text[loc[1]:])
		}
	}
	return normalizeSpaces(text)
}

func normalizeSpaces(text string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
}
