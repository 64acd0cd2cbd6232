package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"example.com/lifelog/backend/internal/config"
	"example.com/lifelog/backend/internal/metrics"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/tracker"
)

var errMissingWeekStart = errors.New("week_start is required")

type scoreResult struct {
	WeekStart string         `json:"week_start"`
	WeekEnd   string         `json:"week_end"`
	Input     metrics.Input  `json:"input"`
	Scores    metrics.Scores `json:"scores"`
	Overall   float64        `json:"overall"`
}

func scoreCmd() *cobra.Command {
	var (
		file        string
		targetsFile string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a week exported as JSON without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open %s: %w", file, err)
				}
				defer f.Close()
				in = f
			}

			data, err := decodeWeek(in)
			if err != nil {
				return err
			}

			targets, err := config.LoadTargets(targetsFile)
			if err != nil {
				return err
			}

			result := scoreWeek(data, targets)
			if format == "table" {
				return writeScoreTable(cmd.OutOrStdout(), result)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Week JSON file (- for stdin)")
	cmd.Flags().StringVar(&targetsFile, "targets", "", "YAML file with weekly targets")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json, table)")

	return cmd
}

// decodeWeek читает неделю строго: неизвестные поля отклоняются, week_start обязан быть
// понедельником, week_end по умолчанию равен воскресенью той же недели.
func decodeWeek(r io.Reader) (metrics.WeekData, error) {
	var data metrics.WeekData

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&data); err != nil {
		return data, fmt.Errorf("decode week: %w", err)
	}

	if data.WeekStart.IsZero() {
		return data, errMissingWeekStart
	}
	if data.WeekStart.Weekday() != time.Monday {
		return data, tracker.ErrNotMonday
	}
	start, end := models.WeekBounds(data.WeekStart)
	data.WeekStart = start
	if data.WeekEnd.IsZero() {
		data.WeekEnd = end
	}

	return data, nil
}

func scoreWeek(data metrics.WeekData, targets metrics.Targets) scoreResult {
	input := metrics.Aggregate(data, targets)
	scores := metrics.Calculate(input)

	return scoreResult{
		WeekStart: data.WeekStart.Format(models.DateLayout),
		WeekEnd:   data.WeekEnd.Format(models.DateLayout),
		Input:     input,
		Scores:    scores,
		Overall:   scores.Overall(),
	}
}

func writeScoreTable(w io.Writer, result scoreResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "week\t%s .. %s\n", result.WeekStart, result.WeekEnd)
	for _, axis := range metrics.Axes {
		fmt.Fprintf(tw, "%s\t%.1f\n", axis, result.Scores.Axis(axis).Score)
	}
	fmt.Fprintf(tw, "overall\t%.1f\n", result.Overall)
	return tw.Flush()
}
