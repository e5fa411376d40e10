package service

import (
	"context"
	"fmt"

	"achivo/internal/domain/entity"
	"achivo/internal/domain/service"
)

type completionChecker struct {
	gateway service.ConversationGateway
}

// NewCompletionChecker creates a new completion checker
func NewCompletionChecker(gateway service.ConversationGateway) service.CompletionChecker {
	return &completionChecker{gateway: gateway}
}

func (c *completionChecker) CheckComplete(ctx context.Context, conversationID, userID string) (*entity.CompletionResult, error) {
	vars, err := c.gateway.GetVariables(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation variables: %w", err)
	}

	return evaluateCompletion(vars), nil
}

// evaluateCompletion reports the required variables that are absent or empty,
// in their fixed order. Other variables are ignored.
func evaluateCompletion(vars []entity.ConversationVariable) *entity.CompletionResult {
	values := entity.VariableValues(vars)

	missing := make([]string, 0, len(entity.RequiredVariables))
	for _, name := range entity.RequiredVariables {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}

	return &entity.CompletionResult{
		IsComplete:       len(missing) == 0,
		MissingVariables: missing,
	}
}
