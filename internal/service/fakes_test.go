package service

import (
	"context"
	"sync"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"

	"github.com/google/uuid"
)

// memoryStore implements the goal, todo and profile repositories in memory
type memoryStore struct {
	mu    sync.Mutex
	clock time.Time

	lifestyles []*entity.IdealLifestyle
	quarters   []*entity.QuarterGoal
	rules      []*entity.RestrictRule
	items      []*entity.RestrictRuleItem
	monthly    []*entity.MonthlyGoal
	weekly     []*entity.WeeklyGoal
	todos      []*entity.Todo
	profiles   map[uuid.UUID]*entity.UserProfile

	failOn map[string]error
	block  map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		profiles: make(map[uuid.UUID]*entity.UserProfile),
		failOn:   make(map[string]error),
		block:    make(map[string]bool),
	}
}

func (s *memoryStore) fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

func (s *memoryStore) blockOn(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block[op] = true
}

func (s *memoryStore) check(ctx context.Context, op string) error {
	s.mu.Lock()
	err, blocking := s.failOn[op], s.block[op]
	s.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

// tick must be called with mu held
func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) counts() (lifestyles, quarters, rules, items, monthly, weekly, todos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lifestyles), len(s.quarters), len(s.rules), len(s.items), len(s.monthly), len(s.weekly), len(s.todos)
}

func (s *memoryStore) CreateIdealLifestyle(ctx context.Context, row *entity.IdealLifestyle) error {
	if err := s.check(ctx, "CreateIdealLifestyle"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID, row.CreatedAt = uuid.New(), s.tick()
	s.lifestyles = append(s.lifestyles, row)
	return nil
}

func (s *memoryStore) CreateQuarterGoal(ctx context.Context, row *entity.QuarterGoal) error {
	if err := s.check(ctx, "CreateQuarterGoal"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID, row.CreatedAt = uuid.New(), s.tick()
	s.quarters = append(s.quarters, row)
	return nil
}

func (s *memoryStore) CreateRestrictRule(ctx context.Context, row *entity.RestrictRule) error {
	if err := s.check(ctx, "CreateRestrictRule"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID, row.CreatedAt = uuid.New(), s.tick()
	s.rules = append(s.rules, row)
	return nil
}

func (s *memoryStore) CreateRestrictRuleItems(ctx context.Context, items []*entity.RestrictRuleItem) error {
	if err := s.check(ctx, "CreateRestrictRuleItems"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	return nil
}

func (s *memoryStore) CreateMonthlyGoal(ctx context.Context, row *entity.MonthlyGoal) error {
	if err := s.check(ctx, "CreateMonthlyGoal"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID, row.CreatedAt = uuid.New(), s.tick()
	s.monthly = append(s.monthly, row)
	return nil
}

func (s *memoryStore) CreateWeeklyGoal(ctx context.Context, row *entity.WeeklyGoal) error {
	if err := s.check(ctx, "CreateWeeklyGoal"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID, row.CreatedAt = uuid.New(), s.tick()
	s.weekly = append(s.weekly, row)
	return nil
}

func latestOf[T any](rows []T, userID uuid.UUID, owner func(T) uuid.UUID, created func(T) time.Time) (T, bool) {
	var best T
	found := false
	for _, row := range rows {
		if owner(row) != userID {
			continue
		}
		if !found || created(row).After(created(best)) {
			best, found = row, true
		}
	}
	return best, found
}

func (s *memoryStore) LatestIdealLifestyle(ctx context.Context, userID uuid.UUID) (*entity.IdealLifestyle, error) {
	if err := s.check(ctx, "LatestIdealLifestyle"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := latestOf(s.lifestyles, userID,
		func(r *entity.IdealLifestyle) uuid.UUID { return r.UserID },
		func(r *entity.IdealLifestyle) time.Time { return r.CreatedAt })
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (s *memoryStore) LatestQuarterGoal(ctx context.Context, userID uuid.UUID) (*entity.QuarterGoal, error) {
	if err := s.check(ctx, "LatestQuarterGoal"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := latestOf(s.quarters, userID,
		func(r *entity.QuarterGoal) uuid.UUID { return r.UserID },
		func(r *entity.QuarterGoal) time.Time { return r.CreatedAt })
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (s *memoryStore) LatestRestrictRule(ctx context.Context, userID uuid.UUID) (*entity.RestrictRule, error) {
	if err := s.check(ctx, "LatestRestrictRule"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := latestOf(s.rules, userID,
		func(r *entity.RestrictRule) uuid.UUID { return r.UserID },
		func(r *entity.RestrictRule) time.Time { return r.CreatedAt })
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (s *memoryStore) LatestMonthlyGoal(ctx context.Context, userID uuid.UUID) (*entity.MonthlyGoal, error) {
	if err := s.check(ctx, "LatestMonthlyGoal"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := latestOf(s.monthly, userID,
		func(r *entity.MonthlyGoal) uuid.UUID { return r.UserID },
		func(r *entity.MonthlyGoal) time.Time { return r.CreatedAt })
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (s *memoryStore) LatestWeeklyGoal(ctx context.Context, userID uuid.UUID) (*entity.WeeklyGoal, error) {
	if err := s.check(ctx, "LatestWeeklyGoal"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := latestOf(s.weekly, userID,
		func(r *entity.WeeklyGoal) uuid.UUID { return r.UserID },
		func(r *entity.WeeklyGoal) time.Time { return r.CreatedAt })
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (s *memoryStore) RestrictRuleItems(ctx context.Context, ruleID uuid.UUID) ([]*entity.RestrictRuleItem, error) {
	if err := s.check(ctx, "RestrictRuleItems"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.RestrictRuleItem
	for _, item := range s.items {
		if item.RestrictRuleID == ruleID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memoryStore) HasIdealLifestyle(ctx context.Context, userID uuid.UUID) (bool, error) {
	if err := s.check(ctx, "HasIdealLifestyle"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.lifestyles {
		if row.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func removeWhere[T any](rows []T, match func(T) bool) []T {
	out := rows[:0]
	for _, row := range rows {
		if !match(row) {
			out = append(out, row)
		}
	}
	return out
}

func (s *memoryStore) Delete(ctx context.Context, level entity.Level, id uuid.UUID) error {
	if err := s.check(ctx, "Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch level {
	case entity.LevelIdealLifestyle:
		s.lifestyles = removeWhere(s.lifestyles, func(r *entity.IdealLifestyle) bool { return r.ID == id })
	case entity.LevelQuarterGoal:
		s.quarters = removeWhere(s.quarters, func(r *entity.QuarterGoal) bool { return r.ID == id })
	case entity.LevelRestrictRule:
		s.rules = removeWhere(s.rules, func(r *entity.RestrictRule) bool { return r.ID == id })
	case entity.LevelMonthlyGoal:
		s.monthly = removeWhere(s.monthly, func(r *entity.MonthlyGoal) bool { return r.ID == id })
	case entity.LevelWeeklyGoal:
		s.weekly = removeWhere(s.weekly, func(r *entity.WeeklyGoal) bool { return r.ID == id })
	case entity.LevelTodo:
		s.todos = removeWhere(s.todos, func(r *entity.Todo) bool { return r.ID == id })
	}
	return nil
}

func (s *memoryStore) DeleteRestrictRuleItems(ctx context.Context, ruleID uuid.UUID) error {
	if err := s.check(ctx, "DeleteRestrictRuleItems"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = removeWhere(s.items, func(r *entity.RestrictRuleItem) bool { return r.RestrictRuleID == ruleID })
	return nil
}

func (s *memoryStore) CreateBatch(ctx context.Context, todos []*entity.Todo) error {
	if err := s.check(ctx, "CreateBatch"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, todo := range todos {
		now := s.tick()
		todo.ID, todo.CreatedAt, todo.UpdatedAt = uuid.New(), now, now
		s.todos = append(s.todos, todo)
	}
	return nil
}

func (s *memoryStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Todo, error) {
	if err := s.check(ctx, "ListByUserID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Todo
	for i := len(s.todos) - 1; i >= 0; i-- {
		if s.todos[i].UserID == userID {
			out = append(out, s.todos[i])
		}
	}
	return out, nil
}

func (s *memoryStore) SetCompleted(ctx context.Context, todoID uuid.UUID, completed bool, at time.Time) (bool, error) {
	if err := s.check(ctx, "SetCompleted"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, todo := range s.todos {
		if todo.ID == todoID {
			todo.IsCompleted, todo.UpdatedAt = completed, at
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) DeleteByWeeklyGoalID(ctx context.Context, weeklyGoalID uuid.UUID) error {
	if err := s.check(ctx, "DeleteByWeeklyGoalID"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = removeWhere(s.todos, func(r *entity.Todo) bool { return r.WeeklyGoalID == weeklyGoalID })
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if err := s.check(ctx, "Exists"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.profiles[userID]
	return ok, nil
}

func (s *memoryStore) Create(ctx context.Context, profile *entity.UserProfile) error {
	if err := s.check(ctx, "Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
	return nil
}

// memoryScoper hands out the same store for both scopes
type memoryScoper struct {
	store *memoryStore
}

func (s *memoryScoper) repos() repository.Repositories {
	return repository.Repositories{Goals: s.store, Todos: s.store, Profiles: s.store}
}

func (s *memoryScoper) Service() repository.Repositories {
	return s.repos()
}

func (s *memoryScoper) Scope(ctx context.Context) (repository.Repositories, error) {
	if entity.PrincipalFromContext(ctx) == nil {
		return repository.Repositories{}, apperror.ErrUnauthenticated
	}
	return s.repos(), nil
}

func userContext(userID uuid.UUID) context.Context {
	return entity.ContextWithPrincipal(context.Background(), &entity.Principal{
		UserID:      userID,
		SessionID:   uuid.New(),
		AccessToken: "token",
	})
}

// fakeGateway is an in-memory conversation service
type fakeGateway struct {
	mu        sync.Mutex
	reply     *entity.ChatReply
	vars      []entity.ConversationVariable
	sendErr   error
	varsErr   error
	sent      []*entity.ChatRequest
	varsCalls []string
}

func (g *fakeGateway) SendMessage(ctx context.Context, req *entity.ChatRequest) (*entity.ChatReply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, req)
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	return g.reply, nil
}

func (g *fakeGateway) GetVariables(ctx context.Context, conversationID, userID string) ([]entity.ConversationVariable, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.varsCalls = append(g.varsCalls, conversationID)
	if g.varsErr != nil {
		return nil, g.varsErr
	}
	return g.vars, nil
}

func completeVariables() []entity.ConversationVariable {
	return []entity.ConversationVariable{
		{Name: entity.VarIdealFuture, Value: "A"},
		{Name: entity.VarQuarterGoal, Value: "B"},
		{Name: entity.VarOneMonthGoal, Value: "C"},
		{Name: entity.VarLimitRules, Value: "x\n\ny"},
		{Name: entity.VarOneWeekGoal, Value: "D"},
		{Name: entity.VarDailyTasks, Value: "t1\nt2"},
	}
}
