package service

import (
	"context"
	"time"

	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/domain/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type taskService struct {
	scoper repository.Scoper
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskService creates a task service acting as the request principal
func NewTaskService(scoper repository.Scoper, logger *zap.Logger) service.TaskService {
	return &taskService{
		scoper: scoper,
		logger: logger,
		now:    time.Now,
	}
}

func (s *taskService) GetUserTasks(ctx context.Context, userID uuid.UUID) []*entity.Task {
	tasks := []*entity.Task{}

	repos, err := s.scoper.Scope(ctx)
	if err != nil {
		s.logger.Warn("task list without session", zap.Error(err))
		return tasks
	}

	todos, err := repos.Todos.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks", zap.String("user_id", userID.String()), zap.Error(err))
		return tasks
	}

	for _, todo := range todos {
		tasks = append(tasks, todo.ToTask())
	}

	return tasks
}

func (s *taskService) UpdateTaskCompletion(ctx context.Context, taskID string, completed bool) bool {
	id, err := uuid.Parse(taskID)
	if err != nil {
		s.logger.Warn("invalid task id", zap.String("task_id", taskID))
		return false
	}

	repos, err := s.scoper.Scope(ctx)
	if err != nil {
		s.logger.Warn("task update without session", zap.Error(err))
		return false
	}

	updated, err := repos.Todos.SetCompleted(ctx, id, completed, s.now().UTC())
	if err != nil {
		s.logger.Error("failed to update task", zap.String("task_id", taskID), zap.Error(err))
		return false
	}

	return updated
}
