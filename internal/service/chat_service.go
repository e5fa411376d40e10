package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/service"
	"achivo/internal/observability"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type chatService struct {
	gateway  service.ConversationGateway
	checker  service.CompletionChecker
	writer   service.GoalWriter
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	gateway service.ConversationGateway,
	checker service.CompletionChecker,
	writer service.GoalWriter,
	metrics *observability.Metrics,
	logger *zap.Logger,
) service.ChatService {
	return &chatService{
		gateway:  gateway,
		checker:  checker,
		writer:   writer,
		validate: newRequestValidator(),
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *chatService) SendMessage(ctx context.Context, req *entity.ChatRequest) (*entity.ChatReply, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	reply, err := s.gateway.SendMessage(ctx, req)
	if err != nil {
		s.observeUpstream("send_message", err)
		return nil, err
	}

	return reply, nil
}

func (s *chatService) CheckCompletion(ctx context.Context, conversationID, userID string) (*entity.CompletionResult, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, apperror.NewValidationError("conversationId", "is required")
	}

	result, err := s.checker.CheckComplete(ctx, conversationID, userID)
	if err != nil {
		s.observeUpstream("get_variables", err)
		return nil, err
	}

	return result, nil
}

func (s *chatService) SendMessageAndCheckCompletion(ctx context.Context, req *entity.ChatRequest) (*entity.GoalChatResult, error) {
	reply, err := s.SendMessage(ctx, req)
	if err != nil {
		return nil, err
	}

	conversationID := reply.ConversationID
	if conversationID == "" {
		conversationID = req.ConversationID
	}

	completion, err := s.CheckCompletion(ctx, conversationID, req.UserID)
	if err != nil {
		return nil, err
	}

	if completion.IsComplete {
		if _, err := s.saveFromConversation(ctx, req.UserID, conversationID); err != nil {
			return nil, err
		}
	}

	return &entity.GoalChatResult{
		Response:         reply,
		IsComplete:       completion.IsComplete,
		MissingVariables: completion.MissingVariables,
	}, nil
}

func (s *chatService) SaveGoalsFromConversation(ctx context.Context, userID, conversationID string) (*entity.GoalHierarchy, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.NewValidationError("userId", "is required")
	}

	completion, err := s.CheckCompletion(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !completion.IsComplete {
		return nil, apperror.NewValidationError("conversationId",
			"conversation is incomplete, missing: "+strings.Join(completion.MissingVariables, ", "))
	}

	return s.saveFromConversation(ctx, userID, conversationID)
}

func (s *chatService) saveFromConversation(ctx context.Context, userID, conversationID string) (*entity.GoalHierarchy, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.NewValidationError("userId", "must be a valid UUID")
	}

	vars, err := s.gateway.GetVariables(ctx, conversationID, userID)
	if err != nil {
		s.observeUpstream("get_variables", err)
		return nil, fmt.Errorf("failed to get conversation variables: %w", err)
	}

	return s.writer.SaveGoalHierarchy(ctx, uid, entity.GoalVariablesFrom(vars))
}

func (s *chatService) validateRequest(req *entity.ChatRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperror.NewValidationError(fieldErrs[0].Field(), "is required")
		}
		return apperror.NewValidationError("", err.Error())
	}
	return nil
}

func (s *chatService) observeUpstream(operation string, err error) {
	var upstream *apperror.UpstreamError
	if errors.As(err, &upstream) {
		s.metrics.ObserveUpstreamError(operation)
		s.logger.Warn("conversation service error",
			zap.String("operation", operation),
			zap.Int("status", upstream.StatusCode),
			zap.String("message", upstream.Message),
		)
	}
}

// newRequestValidator reports fields by their JSON names
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
