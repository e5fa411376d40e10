package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/domain/service"
	"achivo/internal/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Goal save outcomes reported to metrics
const (
	outcomeSuccess     = "success"
	outcomeFailure     = "failure"
	outcomeTimeout     = "timeout"
	outcomeCompensated = "compensated"
)

// GoalWriterConfig bounds a hierarchy save
type GoalWriterConfig struct {
	SaveTimeout         time.Duration
	CompensateOnFailure bool
	CompensationTimeout time.Duration
}

type goalWriter struct {
	scoper  repository.Scoper
	cfg     GoalWriterConfig
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewGoalWriter creates a writer that saves hierarchies with the service credential
func NewGoalWriter(scoper repository.Scoper, cfg GoalWriterConfig, metrics *observability.Metrics, logger *zap.Logger) service.GoalWriter {
	return &goalWriter{
		scoper:  scoper,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// compensation undoes one committed step
type compensation struct {
	level entity.Level
	id    uuid.UUID
	undo  func(ctx context.Context) error
}

// saga records committed steps in commit order
type saga struct {
	steps []compensation
}

func (s *saga) record(level entity.Level, id uuid.UUID, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{level: level, id: id, undo: undo})
}

// reversed returns the recorded steps newest first
func (s *saga) reversed() []compensation {
	out := make([]compensation, len(s.steps))
	for i, step := range s.steps {
		out[len(s.steps)-1-i] = step
	}
	return out
}

func (w *goalWriter) SaveGoalHierarchy(ctx context.Context, userID uuid.UUID, vars entity.GoalVariables) (*entity.GoalHierarchy, error) {
	// The save is not tied to the caller's cancellation, only to its own budget.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.SaveTimeout)
	defer cancel()

	repos := w.scoper.Service()
	s := &saga{}

	hierarchy, err := w.write(ctx, repos, s, userID, vars)
	if err == nil {
		w.metrics.ObserveGoalSave(outcomeSuccess)
		w.logger.Info("goal hierarchy saved",
			zap.String("user_id", userID.String()),
			zap.String("ideal_lifestyle_id", hierarchy.IdealLifestyleID.String()),
			zap.Int("restrict_items", hierarchy.RestrictItems),
			zap.Int("todos", hierarchy.Todos),
		)
		return hierarchy, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = &apperror.TimeoutError{Budget: w.cfg.SaveTimeout, Err: err}
		w.metrics.ObserveGoalSave(outcomeTimeout)
	} else {
		w.metrics.ObserveGoalSave(outcomeFailure)
	}

	w.logger.Error("goal hierarchy save failed",
		zap.String("user_id", userID.String()),
		zap.Error(err),
	)

	if w.cfg.CompensateOnFailure {
		w.compensate(s, userID)
	}

	return nil, err
}

func (w *goalWriter) write(ctx context.Context, repos repository.Repositories, s *saga, userID uuid.UUID, vars entity.GoalVariables) (*entity.GoalHierarchy, error) {
	goals := repos.Goals

	lifestyle := &entity.IdealLifestyle{UserID: userID, Description: vars.IdealFuture}
	if err := goals.CreateIdealLifestyle(ctx, lifestyle); err != nil {
		return nil, err
	}
	s.record(entity.LevelIdealLifestyle, lifestyle.ID, func(ctx context.Context) error {
		return goals.Delete(ctx, entity.LevelIdealLifestyle, lifestyle.ID)
	})

	quarter := &entity.QuarterGoal{UserID: userID, LifestyleID: lifestyle.ID, Description: vars.QuarterGoal}
	if err := goals.CreateQuarterGoal(ctx, quarter); err != nil {
		return nil, err
	}
	s.record(entity.LevelQuarterGoal, quarter.ID, func(ctx context.Context) error {
		return goals.Delete(ctx, entity.LevelQuarterGoal, quarter.ID)
	})

	rule := &entity.RestrictRule{UserID: userID, QuarterGoalID: quarter.ID, Description: vars.LimitRules}
	if err := goals.CreateRestrictRule(ctx, rule); err != nil {
		return nil, err
	}
	s.record(entity.LevelRestrictRule, rule.ID, func(ctx context.Context) error {
		return goals.Delete(ctx, entity.LevelRestrictRule, rule.ID)
	})

	hierarchy := &entity.GoalHierarchy{
		UserID:           userID,
		IdealLifestyleID: lifestyle.ID,
		QuarterGoalID:    quarter.ID,
		RestrictRuleID:   rule.ID,
	}

	var items []*entity.RestrictRuleItem
	for _, text := range splitLines(vars.LimitRules) {
		items = append(items, &entity.RestrictRuleItem{RestrictRuleID: rule.ID, Text: text})
	}
	if len(items) > 0 {
		if err := goals.CreateRestrictRuleItems(ctx, items); err != nil {
			return nil, err
		}
		s.record(entity.LevelRestrictRuleItem, rule.ID, func(ctx context.Context) error {
			return goals.DeleteRestrictRuleItems(ctx, rule.ID)
		})
	}
	hierarchy.RestrictItems = len(items)

	monthly := &entity.MonthlyGoal{UserID: userID, QuarterID: quarter.ID, Description: vars.OneMonthGoal}
	if err := goals.CreateMonthlyGoal(ctx, monthly); err != nil {
		return nil, err
	}
	s.record(entity.LevelMonthlyGoal, monthly.ID, func(ctx context.Context) error {
		return goals.Delete(ctx, entity.LevelMonthlyGoal, monthly.ID)
	})
	hierarchy.MonthlyGoalID = monthly.ID

	weekly := &entity.WeeklyGoal{UserID: userID, MonthlyGoalID: monthly.ID, Description: vars.OneWeekGoal}
	if err := goals.CreateWeeklyGoal(ctx, weekly); err != nil {
		return nil, err
	}
	s.record(entity.LevelWeeklyGoal, weekly.ID, func(ctx context.Context) error {
		return goals.Delete(ctx, entity.LevelWeeklyGoal, weekly.ID)
	})
	hierarchy.WeeklyGoalID = weekly.ID

	var todos []*entity.Todo
	for _, title := range splitLines(vars.DailyTasks) {
		todos = append(todos, &entity.Todo{UserID: userID, WeeklyGoalID: weekly.ID, Title: title})
	}
	if len(todos) > 0 {
		if err := repos.Todos.CreateBatch(ctx, todos); err != nil {
			return nil, err
		}
		s.record(entity.LevelTodo, weekly.ID, func(ctx context.Context) error {
			return repos.Todos.DeleteByWeeklyGoalID(ctx, weekly.ID)
		})
	}
	hierarchy.Todos = len(todos)

	return hierarchy, nil
}

// compensate deletes the committed rows newest first under its own budget
func (w *goalWriter) compensate(s *saga, userID uuid.UUID) {
	steps := s.reversed()
	if len(steps) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.CompensationTimeout)
	defer cancel()

	failed := 0
	for _, step := range steps {
		if err := step.undo(ctx); err != nil {
			failed++
			w.logger.Error("compensating delete failed",
				zap.String("user_id", userID.String()),
				zap.String("level", string(step.level)),
				zap.String("id", step.id.String()),
				zap.Error(fmt.Errorf("undo %s: %w", step.level, err)),
			)
		}
	}

	if failed == 0 {
		w.metrics.ObserveGoalSave(outcomeCompensated)
	}
	w.logger.Warn("goal hierarchy save rolled back",
		zap.String("user_id", userID.String()),
		zap.Int("steps", len(steps)),
		zap.Int("failed", failed),
	)
}
