package repository

import (
	"context"

	"achivo/internal/domain/entity"

	"github.com/google/uuid"
)

// GoalRepository defines the interface for goal hierarchy persistence
type GoalRepository interface {
	// CreateIdealLifestyle inserts the root row and fills its ID and CreatedAt
	CreateIdealLifestyle(ctx context.Context, lifestyle *entity.IdealLifestyle) error

	// CreateQuarterGoal inserts a quarter goal under an ideal lifestyle
	CreateQuarterGoal(ctx context.Context, goal *entity.QuarterGoal) error

	// CreateRestrictRule inserts a restrict rule under a quarter goal
	CreateRestrictRule(ctx context.Context, rule *entity.RestrictRule) error

	// CreateRestrictRuleItems batch-inserts rule items
	CreateRestrictRuleItems(ctx context.Context, items []*entity.RestrictRuleItem) error

	// CreateMonthlyGoal inserts a monthly goal under a quarter goal
	CreateMonthlyGoal(ctx context.Context, goal *entity.MonthlyGoal) error

	// CreateWeeklyGoal inserts a weekly goal under a monthly goal
	CreateWeeklyGoal(ctx context.Context, goal *entity.WeeklyGoal) error

	// LatestIdealLifestyle returns the newest row for the user, or nil when none exists
	LatestIdealLifestyle(ctx context.Context, userID uuid.UUID) (*entity.IdealLifestyle, error)

	// LatestQuarterGoal returns the newest row for the user, or nil when none exists
	LatestQuarterGoal(ctx context.Context, userID uuid.UUID) (*entity.QuarterGoal, error)

	// LatestRestrictRule returns the newest row for the user, or nil when none exists
	LatestRestrictRule(ctx context.Context, userID uuid.UUID) (*entity.RestrictRule, error)

	// LatestMonthlyGoal returns the newest row for the user, or nil when none exists
	LatestMonthlyGoal(ctx context.Context, userID uuid.UUID) (*entity.MonthlyGoal, error)

	// LatestWeeklyGoal returns the newest row for the user, or nil when none exists
	LatestWeeklyGoal(ctx context.Context, userID uuid.UUID) (*entity.WeeklyGoal, error)

	// RestrictRuleItems lists the items of a rule in insertion order
	RestrictRuleItems(ctx context.Context, ruleID uuid.UUID) ([]*entity.RestrictRuleItem, error)

	// HasIdealLifestyle reports whether the user owns at least one ideal lifestyle
	HasIdealLifestyle(ctx context.Context, userID uuid.UUID) (bool, error)

	// Delete removes a single row of the given level by id
	Delete(ctx context.Context, level entity.Level, id uuid.UUID) error

	// DeleteRestrictRuleItems removes every item of a rule
	DeleteRestrictRuleItems(ctx context.Context, ruleID uuid.UUID) error
}
