package service

import (
	"context"
	"errors"
	"testing"

	"achivo/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedTodos(t *testing.T, store *memoryStore, userID uuid.UUID, titles ...string) []*entity.Todo {
	t.Helper()
	weeklyID := uuid.New()
	var todos []*entity.Todo
	for _, title := range titles {
		todos = append(todos, &entity.Todo{UserID: userID, WeeklyGoalID: weeklyID, Title: title})
	}
	require.NoError(t, store.CreateBatch(context.Background(), todos))
	return todos
}

func TestGetUserTasks(t *testing.T) {
	store := newMemoryStore()
	userID := uuid.New()
	todos := seedTodos(t, store, userID, "t1", "t2")
	high := "HIGH"
	todos[1].Priority = &high
	seedTodos(t, store, uuid.New(), "other")

	tasks := NewTaskService(&memoryScoper{store: store}, zap.NewNop()).GetUserTasks(userContext(userID), userID)

	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].Title)
	assert.Equal(t, entity.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "t1", tasks[1].Title)
	assert.Equal(t, entity.PriorityMedium, tasks[1].Priority)
	assert.Equal(t, userID.String(), tasks[1].UserID)
	assert.False(t, tasks[1].Completed)
	assert.Nil(t, tasks[1].DueDate)
}

func TestGetUserTasks_ErrorYieldsEmptyList(t *testing.T) {
	store := newMemoryStore()
	store.fail("ListByUserID", errors.New("boom"))
	userID := uuid.New()

	tasks := NewTaskService(&memoryScoper{store: store}, zap.NewNop()).GetUserTasks(userContext(userID), userID)

	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestUpdateTaskCompletion(t *testing.T) {
	store := newMemoryStore()
	userID := uuid.New()
	todos := seedTodos(t, store, userID, "t1")
	svc := NewTaskService(&memoryScoper{store: store}, zap.NewNop())
	ctx := userContext(userID)

	assert.True(t, svc.UpdateTaskCompletion(ctx, todos[0].ID.String(), true))
	assert.True(t, todos[0].IsCompleted)

	assert.True(t, svc.UpdateTaskCompletion(ctx, todos[0].ID.String(), true))
	assert.True(t, todos[0].IsCompleted)

	assert.True(t, svc.UpdateTaskCompletion(ctx, todos[0].ID.String(), false))
	assert.False(t, todos[0].IsCompleted)
}

func TestUpdateTaskCompletion_Failures(t *testing.T) {
	store := newMemoryStore()
	userID := uuid.New()
	todos := seedTodos(t, store, userID, "t1")
	svc := NewTaskService(&memoryScoper{store: store}, zap.NewNop())
	ctx := userContext(userID)

	assert.False(t, svc.UpdateTaskCompletion(ctx, uuid.NewString(), true), "unknown id")
	assert.False(t, svc.UpdateTaskCompletion(ctx, "not-a-uuid", true), "malformed id")
	assert.False(t, svc.UpdateTaskCompletion(context.Background(), todos[0].ID.String(), true), "no session")

	store.fail("SetCompleted", errors.New("boom"))
	assert.False(t, svc.UpdateTaskCompletion(ctx, todos[0].ID.String(), true), "store error")
}
