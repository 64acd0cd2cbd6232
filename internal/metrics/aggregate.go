package metrics

import (
	"sort"
	"time"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/tasks"
)

const centsPerUnit = 100.0

// Targets are the per-week goals the ratio components are measured against.
type Targets struct {
	LearningArtifacts        int `yaml:"learning_artifacts" json:"learning_artifacts"`
	GymSessions              int `yaml:"gym_sessions" json:"gym_sessions"`
	RelationshipInteractions int `yaml:"relationship_interactions" json:"relationship_interactions"`
	Calls                    int `yaml:"calls" json:"calls"`
}

// DefaultTargets возвращает цели по умолчанию.
func DefaultTargets() Targets {
	return Targets{
		LearningArtifacts:        3,
		GymSessions:              4,
		RelationshipInteractions: 3,
		Calls:                    2,
	}
}

// WeekData is every stored record the scorer looks at for one Monday..Sunday week.
type WeekData struct {
	WeekStart    time.Time            `json:"week_start"`
	WeekEnd      time.Time            `json:"week_end"`
	DailyLogs    []models.DailyLog    `json:"daily_logs"`
	WeeklyLog    *models.WeeklyLog    `json:"weekly_log,omitempty"`
	Todos        []models.TodoItem    `json:"todos"`
	Expenses     []models.Expense     `json:"expenses"`
	Incomes      []models.Income      `json:"incomes"`
	BudgetTarget *models.BudgetTarget `json:"budget_target,omitempty"`
}

// Aggregate сводит записи недели в вход для Calculate.
// Записи вне [WeekStart, WeekEnd] игнорируются.
func Aggregate(data WeekData, targets Targets) Input {
	from, to := models.Day(data.WeekStart), models.Day(data.WeekEnd)

	logs := make([]models.DailyLog, 0, len(data.DailyLogs))
	for _, log := range data.DailyLogs {
		if models.InRange(log.Date, from, to) {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.Before(logs[j].Date) })

	counts := make(tasks.TagCounts)
	var loggedDays, sessions, caloriesDays int
	var weight float64
	var hasWeight bool
	for _, log := range logs {
		dayCounts := tasks.CountCompletedTasks(log.TasksMarkdown)
		counts.Add(dayCounts)

		if log.Logged {
			loggedDays++
		}
		if log.GymSession || dayCounts[tasks.TagGym] > 0 {
			sessions++
		}
		if log.CaloriesTracked {
			caloriesDays++
		}
		if log.Weight != nil {
			weight = *log.Weight
			hasWeight = true
		}
	}

	backlogs := todoBacklogs(data.Todos, from, to)

	var income, spend float64
	var financeActivity bool
	for _, expense := range data.Expenses {
		if models.InRange(expense.Date, from, to) {
			spend += float64(expense.AmountCents) / centsPerUnit
			financeActivity = true
		}
	}
	for _, inc := range data.Incomes {
		if models.InRange(inc.Date, from, to) {
			income += float64(inc.AmountCents) / centsPerUnit
			financeActivity = true
		}
	}

	in := Input{
		Management: ManagementInput{
			WeeklyLogSetup:  data.WeeklyLog != nil,
			DailyLoggedDays: loggedDays,
			FinanceLogSetup: financeActivity,
		},
		Learning: LearningInput{
			LoggedDays:      loggedDays,
			ArtifactsCount:  counts[tasks.TagLearn],
			ArtifactsTarget: targets.LearningArtifacts,
			NewNotes:        counts[tasks.TagNewReview],
			ReviewPoints:    float64(counts[tasks.TagReview]),
			Backlog:         backlogs[models.TodoLabelLearning],
		},
		Producer: ProducerInput{
			Outputs: counts[tasks.TagProduce],
			Backlog: backlogs[models.TodoLabelProducer],
		},
		Finance: FinanceInput{
			Income:          income,
			Spend:           spend,
			ConceptApplied:  models.FinanceConceptNone,
			PortfolioReview: models.PortfolioReviewNone,
			Backlog:         backlogs[models.TodoLabelFinance],
		},
		Fitness: FitnessInput{
			LoggedDays:          loggedDays,
			Sessions:            sessions,
			SessionsTarget:      targets.GymSessions,
			ActualWeight:        weight,
			HasWeight:           hasWeight,
			CaloriesTrackedDays: caloriesDays,
			Backlog:             backlogs[models.TodoLabelFitness],
		},
		Relationship: RelationshipInput{
			Interactions:        counts[tasks.TagRelationship],
			InteractionsTarget:  targets.RelationshipInteractions,
			Calls:               counts[tasks.TagFamily],
			CallsTarget:         targets.Calls,
			UnresolvedConflicts: counts[tasks.TagConflictUnresolved],
			Backlog:             backlogs[models.TodoLabelRelationship],
		},
	}

	if data.BudgetTarget != nil {
		in.Finance.TargetRate = data.BudgetTarget.SavingsRateTarget
		in.Finance.SpendCap = float64(data.BudgetTarget.WeeklySpendCapCents) / centsPerUnit
	}

	if week := data.WeeklyLog; week != nil {
		in.Fitness.TargetWeight = week.TargetWeight
		in.Relationship.PrimaryActive = week.PrimaryRelationshipActive
		if week.FinanceConceptApplied != "" {
			in.Finance.ConceptApplied = week.FinanceConceptApplied
		}
		if week.PortfolioReview != "" {
			in.Finance.PortfolioReview = week.PortfolioReview
		}
	}

	return in
}

// todoBacklogs counts, per label, todos open at week start, added and closed during the week.
func todoBacklogs(todos []models.TodoItem, from, to time.Time) map[models.TodoLabel]Backlog {
	backlogs := make(map[models.TodoLabel]Backlog, len(models.TodoLabels))

	for _, todo := range todos {
		b := backlogs[todo.Label]
		source := models.Day(todo.SourceDate)

		if source.Before(from) && openAt(todo, from) {
			b.Start++
		}
		if models.InRange(source, from, to) {
			b.Added++
		}
		if todo.Completed && todo.CompletedDate != nil && models.InRange(*todo.CompletedDate, from, to) {
			b.Closed++
		}

		backlogs[todo.Label] = b
	}

	return backlogs
}

func openAt(todo models.TodoItem, day time.Time) bool {
	if !todo.Completed || todo.CompletedDate == nil {
		return true
	}
	return !models.Day(*todo.CompletedDate).Before(day)
}
