// Package journal reads daily markdown journal files named YYYY-MM-DD.md
// with optional YAML frontmatter and turns them into daily log inputs.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/tracker"
)

const delimiter = "---"

var ErrNoFrontmatterEnd = errors.New("journal: no closing frontmatter delimiter")

// Frontmatter holds the per-day flags. Missing fields keep their defaults:
// a journal file counts as a logged day.
type Frontmatter struct {
	Logged   *bool    `yaml:"logged"`
	Gym      bool     `yaml:"gym"`
	Weight   *float64 `yaml:"weight"`
	Calories bool     `yaml:"calories"`
}

type Entry struct {
	Path        string
	Date        time.Time
	Frontmatter Frontmatter
	Body        string
}

// Input converts the entry into a DailyLogService input.
func (e Entry) Input() tracker.DailyLogInput {
	logged := true
	if e.Frontmatter.Logged != nil {
		logged = *e.Frontmatter.Logged
	}
	return tracker.DailyLogInput{
		Logged:          logged,
		TasksMarkdown:   e.Body,
		GymSession:      e.Frontmatter.Gym,
		Weight:          e.Frontmatter.Weight,
		CaloriesTracked: e.Frontmatter.Calories,
	}
}

// DateFromPath разбирает дату из имени файла вида 2024-01-15.md.
func DateFromPath(path string) (time.Time, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return models.ParseDate(name)
}

// Parse разбирает содержимое файла: YAML-фронтматтер между --- и тело.
func Parse(path string, content []byte) (Entry, error) {
	date, err := DateFromPath(path)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Path: path, Date: date}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, delimiter+"\n") {
		entry.Body = text
		return entry, nil
	}

	rest := text[len(delimiter)+1:]
	var yamlPart, body string
	if strings.HasPrefix(rest, delimiter) {
		body = rest[len(delimiter):]
	} else {
		end := strings.Index(rest, "\n"+delimiter)
		if end == -1 {
			return Entry{}, fmt.Errorf("%s: %w", path, ErrNoFrontmatterEnd)
		}
		yamlPart = rest[:end]
		body = rest[end+1+len(delimiter):]
	}

	if err := yaml.Unmarshal([]byte(yamlPart), &entry.Frontmatter); err != nil {
		return Entry{}, fmt.Errorf("%s: parse frontmatter: %w", path, err)
	}
	entry.Body = strings.TrimLeft(body, "\n")

	return entry, nil
}

// Discover возвращает файлы по glob-шаблону (поддерживается **), отсортированные по дате.
// Файлы, имя которых не является датой, пропускаются.
func Discover(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	dated := make([]string, 0, len(matches))
	for _, match := range matches {
		if _, err := DateFromPath(match); err != nil {
			slog.Debug("skipping non-dated file", slog.String("path", match))
			continue
		}
		dated = append(dated, match)
	}

	sort.Slice(dated, func(i, j int) bool {
		return filepath.Base(dated[i]) < filepath.Base(dated[j])
	})

	return dated, nil
}

// Saver is implemented by *tracker.DailyLogService.
type Saver interface {
	Save(ctx context.Context, userID uuid.UUID, date time.Time, input tracker.DailyLogInput) (tracker.DailyLogResult, error)
}

type Summary struct {
	Files           int
	TodosCreated    int
	TodosClosed     int
	LearningCreated int
}

// Import сохраняет найденные файлы по порядку дат, чтобы перенос todo между днями
// обрабатывался так же, как при ручном вводе.
func Import(ctx context.Context, saver Saver, userID uuid.UUID, paths []string) (Summary, error) {
	var summary Summary

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return summary, fmt.Errorf("read %s: %w", path, err)
		}

		entry, err := Parse(path, content)
		if err != nil {
			return summary, err
		}

		result, err := saver.Save(ctx, userID, entry.Date, entry.Input())
		if err != nil {
			return summary, fmt.Errorf("save %s: %w", path, err)
		}

		summary.Files++
		summary.TodosCreated += result.TodosCreated
		summary.TodosClosed += result.TodosClosed
		summary.LearningCreated += result.LearningCreated
	}

	return summary, nil
}
