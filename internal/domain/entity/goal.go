package entity

import (
	"time"

	"github.com/google/uuid"
)

// Level identifies one table of the goal hierarchy
type Level string

const (
	LevelIdealLifestyle   Level = "ideal_lifestyle"
	LevelQuarterGoal      Level = "quarter_goal"
	LevelRestrictRule     Level = "restrict_rule"
	LevelRestrictRuleItem Level = "restrict_rule_item"
	LevelMonthlyGoal      Level = "monthly_goal"
	LevelWeeklyGoal       Level = "weekly_goal"
	LevelTodo             Level = "todo"
)

// IdealLifestyle is the root of a goal hierarchy
type IdealLifestyle struct {
	ID          uuid.UUID
	UserID      uuid.UUID `validate:"required"`
	Description string
	CreatedAt   time.Time
}

// QuarterGoal is the three-month goal derived from an ideal lifestyle
type QuarterGoal struct {
	ID          uuid.UUID
	UserID      uuid.UUID `validate:"required"`
	LifestyleID uuid.UUID `validate:"required"`
	Description string
	CreatedAt   time.Time
}

// RestrictRule holds the free text of things the user gives up for a quarter goal
type RestrictRule struct {
	ID            uuid.UUID
	UserID        uuid.UUID `validate:"required"`
	QuarterGoalID uuid.UUID `validate:"required"`
	Description   string
	CreatedAt     time.Time
}

// RestrictRuleItem is one line of a restrict rule
type RestrictRuleItem struct {
	RestrictRuleID uuid.UUID `validate:"required"`
	Text           string    `validate:"required"`
}

// MonthlyGoal is the one-month goal under a quarter goal
type MonthlyGoal struct {
	ID          uuid.UUID
	UserID      uuid.UUID `validate:"required"`
	QuarterID   uuid.UUID `validate:"required"`
	Description string
	CreatedAt   time.Time
}

// WeeklyGoal is the one-week goal under a monthly goal
type WeeklyGoal struct {
	ID            uuid.UUID
	UserID        uuid.UUID `validate:"required"`
	MonthlyGoalID uuid.UUID `validate:"required"`
	Description   string
	CreatedAt     time.Time
}

// GoalHierarchy collects the identifiers created by one save
type GoalHierarchy struct {
	UserID           uuid.UUID `json:"userId"`
	IdealLifestyleID uuid.UUID `json:"idealLifestyleId"`
	QuarterGoalID    uuid.UUID `json:"quarterGoalId"`
	RestrictRuleID   uuid.UUID `json:"restrictRuleId"`
	MonthlyGoalID    uuid.UUID `json:"monthlyGoalId"`
	WeeklyGoalID     uuid.UUID `json:"weeklyGoalId"`
	RestrictItems    int       `json:"restrictItems"`
	Todos            int       `json:"todos"`
}

// GoalData is the flattened, display-ready view of a user's current hierarchy
type GoalData struct {
	IdealFuture  string `json:"idealFuture"`
	QuarterGoal  string `json:"quarterGoal"`
	OneMonthGoal string `json:"oneMonthGoal"`
	OneWeekGoal  string `json:"oneWeekGoal"`
	LimitRules   string `json:"limitRules"`
	DailyTasks   string `json:"dailyTasks"`
}
