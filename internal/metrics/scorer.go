// Package metrics scores a week of activity on six life axes.
package metrics

import (
	"math"

	"example.com/lifelog/backend/internal/models"
)

const (
	daysPerWeek          = 7.0
	revisionTarget       = 35.0
	newNoteRevisionValue = 10.0
	weightDecay          = 0.2
	conflictHygieneCap   = 80.0
	relationshipFloor    = 60.0
)

type Axis string

const (
	AxisManagement   Axis = "management"
	AxisLearning     Axis = "learning"
	AxisProducer     Axis = "producer"
	AxisFinance      Axis = "finance"
	AxisFitness      Axis = "fitness"
	AxisRelationship Axis = "relationship"
)

// Axes lists every axis in display order.
var Axes = []Axis{AxisManagement, AxisLearning, AxisProducer, AxisFinance, AxisFitness, AxisRelationship}

// Backlog describes one todo label over the week: open at start, added, closed.
type Backlog struct {
	Start  int `json:"start"`
	Added  int `json:"added"`
	Closed int `json:"closed"`
}

type ManagementInput struct {
	WeeklyLogSetup  bool `json:"weekly_log_setup"`
	DailyLoggedDays int  `json:"daily_logged_days"`
	FinanceLogSetup bool `json:"finance_log_setup"`
}

type LearningInput struct {
	LoggedDays      int     `json:"logged_days"`
	ArtifactsCount  int     `json:"artifacts_count"`
	ArtifactsTarget int     `json:"artifacts_target"`
	NewNotes        int     `json:"new_notes"`
	ReviewPoints    float64 `json:"review_points"`
	Backlog         Backlog `json:"backlog"`
}

type ProducerInput struct {
	Outputs int     `json:"outputs"`
	Backlog Backlog `json:"backlog"`
}

type FinanceInput struct {
	Income          float64                `json:"income"`
	Spend           float64                `json:"spend"`
	TargetRate      float64                `json:"target_rate"`
	SpendCap        float64                `json:"spend_cap"`
	ConceptApplied  models.FinanceConcept  `json:"concept_applied"`
	PortfolioReview models.PortfolioReview `json:"portfolio_review"`
	Backlog         Backlog                `json:"backlog"`
}

type FitnessInput struct {
	LoggedDays          int     `json:"logged_days"`
	Sessions            int     `json:"sessions"`
	SessionsTarget      int     `json:"sessions_target"`
	ActualWeight        float64 `json:"actual_weight"`
	HasWeight           bool    `json:"has_weight"`
	TargetWeight        float64 `json:"target_weight"`
	CaloriesTrackedDays int     `json:"calories_tracked_days"`
	Backlog             Backlog `json:"backlog"`
}

type RelationshipInput struct {
	Interactions        int     `json:"interactions"`
	InteractionsTarget  int     `json:"interactions_target"`
	Calls               int     `json:"calls"`
	CallsTarget         int     `json:"calls_target"`
	UnresolvedConflicts int     `json:"unresolved_conflicts"`
	PrimaryActive       bool    `json:"primary_active"`
	Backlog             Backlog `json:"backlog"`
}

// Input is everything the scorer needs for one week.
type Input struct {
	Management   ManagementInput   `json:"management"`
	Learning     LearningInput     `json:"learning"`
	Producer     ProducerInput     `json:"producer"`
	Finance      FinanceInput      `json:"finance"`
	Fitness      FitnessInput      `json:"fitness"`
	Relationship RelationshipInput `json:"relationship"`
}

type Component struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type AxisScore struct {
	Score      float64     `json:"score"`
	Components []Component `json:"components"`
}

type Scores struct {
	Management   AxisScore `json:"management"`
	Learning     AxisScore `json:"learning"`
	Producer     AxisScore `json:"producer"`
	Finance      AxisScore `json:"finance"`
	Fitness      AxisScore `json:"fitness"`
	Relationship AxisScore `json:"relationship"`
}

// Axis возвращает оценку по имени оси.
func (s Scores) Axis(axis Axis) AxisScore {
	switch axis {
	case AxisManagement:
		return s.Management
	case AxisLearning:
		return s.Learning
	case AxisProducer:
		return s.Producer
	case AxisFinance:
		return s.Finance
	case AxisFitness:
		return s.Fitness
	case AxisRelationship:
		return s.Relationship
	default:
		return AxisScore{}
	}
}

// Overall возвращает среднее по шести осям.
func (s Scores) Overall() float64 {
	var total float64
	for _, axis := range Axes {
		total += s.Axis(axis).Score
	}
	return finite(total / float64(len(Axes)))
}

// Calculate считает шесть осевых оценок недели. Функция чистая и не возвращает ошибок.
func Calculate(in Input) Scores {
	return Scores{
		Management:   management(in.Management),
		Learning:     learning(in.Learning),
		Producer:     producer(in.Producer),
		Finance:      finance(in.Finance),
		Fitness:      fitness(in.Fitness),
		Relationship: relationship(in.Relationship),
	}
}

// TodoHygiene оценивает пропускную способность и динамику бэклога (0..100).
func TodoHygiene(start, added, closed int) float64 {
	if start == 0 && added == 0 && closed == 0 {
		return 0
	}

	base := math.Max(1, float64(start))
	throughput := finite(math.Min(1, float64(closed)/base))

	ratio := finite(float64(closed-added) / base)
	var hygiene float64
	if ratio >= 0 {
		hygiene = 0.5 + math.Min(0.5, ratio*0.5)
	} else {
		hygiene = math.Max(0, 0.5+ratio)
	}

	return finite(100 * (0.6*throughput + 0.4*hygiene))
}

func management(in ManagementInput) AxisScore {
	return weighted(
		Component{Name: "weekly_log", Score: boolScore(in.WeeklyLogSetup), Weight: 0.4},
		Component{Name: "daily_logging", Score: 100 * coverage(in.DailyLoggedDays), Weight: 0.3},
		Component{Name: "finance_log", Score: boolScore(in.FinanceLogSetup), Weight: 0.3},
	)
}

func learning(in LearningInput) AxisScore {
	c := coverage(in.LoggedDays)
	artifacts := capped(100 * float64(in.ArtifactsCount) * c / float64(in.ArtifactsTarget))
	revision := newNoteRevisionValue*float64(in.NewNotes) + in.ReviewPoints
	revisionScore := capped(100 * revision * c / revisionTarget)

	return weighted(
		Component{Name: "artifacts", Score: artifacts, Weight: 0.3},
		Component{Name: "revision", Score: revisionScore, Weight: 0.4},
		Component{Name: "todo_hygiene", Score: backlogScore(in.Backlog), Weight: 0.3},
	)
}

func producer(in ProducerInput) AxisScore {
	return weighted(
		Component{Name: "outputs", Score: capped(100 * float64(in.Outputs)), Weight: 0.5},
		Component{Name: "todo_hygiene", Score: backlogScore(in.Backlog), Weight: 0.5},
	)
}

func finance(in FinanceInput) AxisScore {
	savingsRate := finite((in.Income - in.Spend) / math.Max(1, in.Income))
	srn := finite(math.Min(1, savingsRate/math.Max(0.01, in.TargetRate)))
	spn := finite(math.Min(1, in.SpendCap/math.Max(in.Spend, in.SpendCap)))
	budget := finite(100 * (0.5*srn + 0.5*spn))

	return weighted(
		Component{Name: "budget", Score: budget, Weight: 0.2},
		Component{Name: "concept", Score: conceptScore(in.ConceptApplied), Weight: 0.2},
		Component{Name: "portfolio", Score: portfolioScore(in.PortfolioReview), Weight: 0.2},
		Component{Name: "todo_hygiene", Score: backlogScore(in.Backlog), Weight: 0.4},
	)
}

func fitness(in FitnessInput) AxisScore {
	c := coverage(in.LoggedDays)
	sessions := capped(100 * float64(in.Sessions) * c / float64(in.SessionsTarget))

	var weight float64
	if in.TargetWeight > 0 && in.HasWeight {
		weight = capped(100 * math.Exp(-weightDecay*math.Abs(in.ActualWeight-in.TargetWeight)))
	}

	return weighted(
		Component{Name: "sessions", Score: sessions, Weight: 0.4},
		Component{Name: "weight", Score: weight, Weight: 0.3},
		Component{Name: "calories", Score: 100 * coverage(in.CaloriesTrackedDays), Weight: 0.2},
		Component{Name: "todo_hygiene", Score: backlogScore(in.Backlog), Weight: 0.1},
	)
}

func relationship(in RelationshipInput) AxisScore {
	interactions := capped(100 * float64(in.Interactions) / float64(in.InteractionsTarget))
	calls := capped(100 * float64(in.Calls) / float64(in.CallsTarget))

	hygiene := backlogScore(in.Backlog)
	if in.UnresolvedConflicts > 0 {
		hygiene = math.Min(hygiene, conflictHygieneCap)
	}

	score := weighted(
		Component{Name: "interactions", Score: interactions, Weight: 0.6},
		Component{Name: "calls", Score: calls, Weight: 0.1},
		Component{Name: "todo_hygiene", Score: hygiene, Weight: 0.3},
	)
	if in.PrimaryActive {
		score.Score = math.Max(relationshipFloor, score.Score)
	}
	return score
}

func weighted(components ...Component) AxisScore {
	var total float64
	for i := range components {
		components[i].Score = finite(components[i].Score)
		total += components[i].Score * components[i].Weight
	}
	return AxisScore{Score: finite(total), Components: components}
}

func backlogScore(b Backlog) float64 {
	return TodoHygiene(b.Start, b.Added, b.Closed)
}

func coverage(days int) float64 {
	return finite(float64(days) / daysPerWeek)
}

// capped coerces NaN/Inf (e.g. x/0 targets) to 0 first, then clamps to 100.
func capped(value float64) float64 {
	return math.Min(100, finite(value))
}

func finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func boolScore(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}

func conceptScore(value models.FinanceConcept) float64 {
	switch value {
	case models.FinanceConceptImplemented:
		return 100
	case models.FinanceConceptNoted:
		return 50
	default:
		return 0
	}
}

func portfolioScore(value models.PortfolioReview) float64 {
	switch value {
	case models.PortfolioReviewIPSChecked:
		return 100
	case models.PortfolioReviewReviewed:
		return 60
	default:
		return 0
	}
}
