package models

import (
	"time"

	"github.com/google/uuid"
)

type TodoLabel string

type LearningSourceType string

type LearningStatus string

type FinanceConcept string

type PortfolioReview string

const (
	TodoLabelLearning     TodoLabel = "learning"
	TodoLabelProducer     TodoLabel = "producer"
	TodoLabelFinance      TodoLabel = "finance"
	TodoLabelFitness      TodoLabel = "fitness"
	TodoLabelRelationship TodoLabel = "relationship"

	LearningSourceLearn  LearningSourceType = "learn"
	LearningSourceReview LearningSourceType = "review"

	LearningStatusNew       LearningStatus = "new"
	LearningStatusLearning  LearningStatus = "learning"
	LearningStatusReview    LearningStatus = "review"
	LearningStatusSuspended LearningStatus = "suspended"

	FinanceConceptNone        FinanceConcept = "none"
	FinanceConceptNoted       FinanceConcept = "noted"
	FinanceConceptImplemented FinanceConcept = "implemented"

	PortfolioReviewNone       PortfolioReview = "none"
	PortfolioReviewReviewed   PortfolioReview = "reviewed"
	PortfolioReviewIPSChecked PortfolioReview = "ips_checked"
)

// TodoLabels перечисляет метки в порядке осей.
var TodoLabels = []TodoLabel{
	TodoLabelLearning,
	TodoLabelProducer,
	TodoLabelFinance,
	TodoLabelFitness,
	TodoLabelRelationship,
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DailyLog struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Date            time.Time `json:"date"`
	Logged          bool      `json:"logged"`
	TasksMarkdown   string    `json:"tasks_markdown"`
	GymSession      bool      `json:"gym_session"`
	Weight          *float64  `json:"weight,omitempty"`
	CaloriesTracked bool      `json:"calories_tracked"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type WeeklyLog struct {
	ID                        uuid.UUID       `json:"id"`
	UserID                    uuid.UUID       `json:"user_id"`
	WeekStart                 time.Time       `json:"week_start"`
	WeekEnd                   time.Time       `json:"week_end"`
	TasksMarkdown             string          `json:"tasks_markdown"`
	TargetWeight              float64         `json:"target_weight"`
	PrimaryRelationshipActive bool            `json:"primary_relationship_active"`
	FinanceConceptApplied     FinanceConcept  `json:"finance_concept_applied"`
	PortfolioReview           PortfolioReview `json:"portfolio_review"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

type TodoItem struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Text          string     `json:"text"`
	Label         TodoLabel  `json:"label"`
	SourceDate    time.Time  `json:"source_date"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	ClosedByLog   bool       `json:"closed_by_log"`
	CreatedAt     time.Time  `json:"created_at"`
}

type LearningItem struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Text           string             `json:"text"`
	SourceDate     time.Time          `json:"source_date"`
	SourceType     LearningSourceType `json:"source_type"`
	EaseFactor     float64            `json:"ease_factor"`
	Interval       int                `json:"interval"`
	Repetitions    int                `json:"repetitions"`
	Status         LearningStatus     `json:"status"`
	NextReviewDate time.Time          `json:"next_review_date"`
	LastReviewDate *time.Time         `json:"last_review_date,omitempty"`
	RelatedDates   []time.Time        `json:"related_dates"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type ReviewLog struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     string    `json:"rating"`
	ReviewDate time.Time `json:"review_date"`
	Interval   int       `json:"interval"`
	EaseFactor float64   `json:"ease_factor"`
	CreatedAt  time.Time `json:"created_at"`
}

type Expense struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Income struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Date        time.Time `json:"date"`
	Source      string    `json:"source"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BudgetTarget struct {
	UserID              uuid.UUID `json:"user_id"`
	SavingsRateTarget   float64   `json:"savings_rate_target"`
	WeeklySpendCapCents int64     `json:"weekly_spend_cap_cents"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

// Usable сообщает, можно ли обменять токен на новую пару.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// Rotated сообщает, что токен уже был обменян; повторное предъявление означает утечку.
func (t RefreshToken) Rotated() bool {
	return t.RevokedAt != nil && t.ReplacedBy != nil
}

// IsValid сообщает, является ли метка одной из известных.
func (l TodoLabel) IsValid() bool {
	for _, label := range TodoLabels {
		if l == label {
			return true
		}
	}
	return false
}

func (s LearningStatus) IsValid() bool {
	switch s {
	case LearningStatusNew, LearningStatusLearning, LearningStatusReview, LearningStatusSuspended:
		return true
	default:
		return false
	}
}

func (s LearningSourceType) IsValid() bool {
	return s == LearningSourceLearn || s == LearningSourceReview
}

func (c FinanceConcept) IsValid() bool {
	return c == FinanceConceptNone || c == FinanceConceptNoted || c == FinanceConceptImplemented
}

func (p PortfolioReview) IsValid() bool {
	return p == PortfolioReviewNone || p == PortfolioReviewReviewed || p == PortfolioReviewIPSChecked
}
