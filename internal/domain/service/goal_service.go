package service

import (
	"context"

	"achivo/internal/domain/entity"

	"github.com/google/uuid"
)

// ConversationGateway defines the interface to the conversational service
type ConversationGateway interface {
	// SendMessage posts one utterance and waits for the blocking answer
	SendMessage(ctx context.Context, req *entity.ChatRequest) (*entity.ChatReply, error)

	// GetVariables lists the variables accumulated by a conversation
	GetVariables(ctx context.Context, conversationID, userID string) ([]entity.ConversationVariable, error)
}

// CompletionChecker decides whether a conversation has collected every goal variable
type CompletionChecker interface {
	CheckComplete(ctx context.Context, conversationID, userID string) (*entity.CompletionResult, error)
}

// GoalWriter persists a goal hierarchy
type GoalWriter interface {
	SaveGoalHierarchy(ctx context.Context, userID uuid.UUID, vars entity.GoalVariables) (*entity.GoalHierarchy, error)
}

// GoalReader builds display views of the caller's goals. Methods never return errors.
type GoalReader interface {
	// GetUserGoals returns nil when any lookup fails
	GetUserGoals(ctx context.Context, userID uuid.UUID) *entity.GoalData

	// CheckUserHasGoals returns false on failure
	CheckUserHasGoals(ctx context.Context, userID uuid.UUID) bool
}

// TaskService lists and completes the caller's todos
type TaskService interface {
	// GetUserTasks returns an empty list on failure
	GetUserTasks(ctx context.Context, userID uuid.UUID) []*entity.Task

	// UpdateTaskCompletion returns false for unknown or malformed ids and on failure
	UpdateTaskCompletion(ctx context.Context, taskID string, completed bool) bool
}

// ChatService drives the goal-setting dialogue
type ChatService interface {
	// SendMessage is a thin passthrough to the gateway
	SendMessage(ctx context.Context, req *entity.ChatRequest) (*entity.ChatReply, error)

	// CheckCompletion proxies the completion checker
	CheckCompletion(ctx context.Context, conversationID, userID string) (*entity.CompletionResult, error)

	// SendMessageAndCheckCompletion sends a message and saves the hierarchy once the conversation is complete
	SendMessageAndCheckCompletion(ctx context.Context, req *entity.ChatRequest) (*entity.GoalChatResult, error)

	// SaveGoalsFromConversation saves the hierarchy of a complete conversation
	SaveGoalsFromConversation(ctx context.Context, userID, conversationID string) (*entity.GoalHierarchy, error)
}
