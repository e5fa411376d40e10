package service

import (
	"context"

	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/domain/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	placeholderIdealFuture  = "No ideal lifestyle has been set yet"
	placeholderQuarterGoal  = "No 3-month goal has been set yet"
	placeholderOneMonthGoal = "No 1-month goal has been set yet"
	placeholderOneWeekGoal  = "No 1-week goal has been set yet"
	placeholderLimitRules   = "No restriction rules have been set yet"
	placeholderDailyTasks   = "No daily tasks have been set yet"

	rulePrefix = "・"
	todoPrefix = "○ "
)

type goalReader struct {
	scoper repository.Scoper
	logger *zap.Logger
}

// NewGoalReader creates a reader acting as the request principal
func NewGoalReader(scoper repository.Scoper, logger *zap.Logger) service.GoalReader {
	return &goalReader{scoper: scoper, logger: logger}
}

func (r *goalReader) GetUserGoals(ctx context.Context, userID uuid.UUID) *entity.GoalData {
	data, err := r.loadGoals(ctx, userID)
	if err != nil {
		r.logger.Error("failed to load goals", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}
	return data
}

func (r *goalReader) loadGoals(ctx context.Context, userID uuid.UUID) (*entity.GoalData, error) {
	repos, err := r.scoper.Scope(ctx)
	if err != nil {
		return nil, err
	}
	goals := repos.Goals

	lifestyle, err := goals.LatestIdealLifestyle(ctx, userID)
	if err != nil {
		return nil, err
	}
	quarter, err := goals.LatestQuarterGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthly, err := goals.LatestMonthlyGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekly, err := goals.LatestWeeklyGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	rule, err := goals.LatestRestrictRule(ctx, userID)
	if err != nil {
		return nil, err
	}

	var limitRules string
	if rule != nil {
		items, err := goals.RestrictRuleItems(ctx, rule.ID)
		if err != nil {
			return nil, err
		}
		texts := make([]string, 0, len(items))
		for _, item := range items {
			texts = append(texts, item.Text)
		}
		limitRules = joinPrefixed(rulePrefix, texts)
	}

	todos, err := repos.Todos.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(todos))
	for _, todo := range todos {
		titles = append(titles, todo.Title)
	}

	data := &entity.GoalData{
		IdealFuture:  placeholderIdealFuture,
		QuarterGoal:  placeholderQuarterGoal,
		OneMonthGoal: placeholderOneMonthGoal,
		OneWeekGoal:  placeholderOneWeekGoal,
		LimitRules:   orPlaceholder(limitRules, placeholderLimitRules),
		DailyTasks:   orPlaceholder(joinPrefixed(todoPrefix, titles), placeholderDailyTasks),
	}
	if lifestyle != nil {
		data.IdealFuture = orPlaceholder(lifestyle.Description, placeholderIdealFuture)
	}
	if quarter != nil {
		data.QuarterGoal = orPlaceholder(quarter.Description, placeholderQuarterGoal)
	}
	if monthly != nil {
		data.OneMonthGoal = orPlaceholder(monthly.Description, placeholderOneMonthGoal)
	}
	if weekly != nil {
		data.OneWeekGoal = orPlaceholder(weekly.Description, placeholderOneWeekGoal)
	}

	return data, nil
}

func (r *goalReader) CheckUserHasGoals(ctx context.Context, userID uuid.UUID) bool {
	repos, err := r.scoper.Scope(ctx)
	if err != nil {
		r.logger.Warn("goal check without session", zap.Error(err))
		return false
	}

	exists, err := repos.Goals.HasIdealLifestyle(ctx, userID)
	if err != nil {
		r.logger.Error("failed to check goals", zap.String("user_id", userID.String()), zap.Error(err))
		return false
	}

	return exists
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
