package postgres

import (
	"context"
	"errors"
	"fmt"

	"achivo/internal/domain/entity"
	"achivo/internal/domain/repository"
	"achivo/internal/infrastructure/recordstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type goalRepository struct {
	db recordstore.Handle
}

// NewGoalRepository creates a new goal repository bound to a record handle
func NewGoalRepository(db recordstore.Handle) repository.GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) CreateIdealLifestyle(ctx context.Context, lifestyle *entity.IdealLifestyle) error {
	if err := validateRow(tableIdealLifestyles, lifestyle); err != nil {
		return err
	}

	query := `
		INSERT INTO "IDEAL_LIFESTYLES" (user_id, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, lifestyle.UserID, lifestyle.Description).
			Scan(&lifestyle.ID, &lifestyle.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create ideal lifestyle: %w", err)
	}

	return nil
}

func (r *goalRepository) CreateQuarterGoal(ctx context.Context, goal *entity.QuarterGoal) error {
	if err := validateRow(tableQuarterGoals, goal); err != nil {
		return err
	}

	query := `
		INSERT INTO "QUARTER_GOALS" (user_id, lifestyle_id, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, goal.UserID, goal.LifestyleID, goal.Description).
			Scan(&goal.ID, &goal.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create quarter goal: %w", err)
	}

	return nil
}

func (r *goalRepository) CreateRestrictRule(ctx context.Context, rule *entity.RestrictRule) error {
	if err := validateRow(tableRestrictRules, rule); err != nil {
		return err
	}

	query := `
		INSERT INTO "Restrict_Rule" (user_id, quarter_goal_id, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, rule.UserID, rule.QuarterGoalID, rule.Description).
			Scan(&rule.ID, &rule.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create restrict rule: %w", err)
	}

	return nil
}

func (r *goalRepository) CreateRestrictRuleItems(ctx context.Context, items []*entity.RestrictRuleItem) error {
	if len(items) == 0 {
		return nil
	}

	ruleIDs := make([]string, 0, len(items))
	texts := make([]string, 0, len(items))
	for _, item := range items {
		if err := validateRow(tableRestrictRuleItems, item); err != nil {
			return err
		}
		ruleIDs = append(ruleIDs, item.RestrictRuleID.String())
		texts = append(texts, item.Text)
	}

	query := `
		INSERT INTO "RESTRICT_RULE_ITEMS" (restrict_rule_id, text)
		SELECT * FROM unnest($1::uuid[], $2::text[])
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		_, err := q.Exec(ctx, query, ruleIDs, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create restrict rule items: %w", err)
	}

	return nil
}

func (r *goalRepository) CreateMonthlyGoal(ctx context.Context, goal *entity.MonthlyGoal) error {
	if err := validateRow(tableMonthlyGoals, goal); err != nil {
		return err
	}

	query := `
		INSERT INTO "MONTHLY_GOALS" (user_id, quarter_id, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, goal.UserID, goal.QuarterID, goal.Description).
			Scan(&goal.ID, &goal.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create monthly goal: %w", err)
	}

	return nil
}

func (r *goalRepository) CreateWeeklyGoal(ctx context.Context, goal *entity.WeeklyGoal) error {
	if err := validateRow(tableWeeklyGoals, goal); err != nil {
		return err
	}

	query := `
		INSERT INTO "WEEKLY_GOALS" (user_id, monthly_goal_id, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, goal.UserID, goal.MonthlyGoalID, goal.Description).
			Scan(&goal.ID, &goal.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create weekly goal: %w", err)
	}

	return nil
}

// latest scans the newest row of table for the user. found is false when the user has none.
func (r *goalRepository) latest(ctx context.Context, table, columns string, userID uuid.UUID, dest ...any) (bool, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, columns, table)

	var found bool
	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		found = true
		err := q.QueryRow(ctx, query, userID).Scan(dest...)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

func (r *goalRepository) LatestIdealLifestyle(ctx context.Context, userID uuid.UUID) (*entity.IdealLifestyle, error) {
	row := &entity.IdealLifestyle{}
	found, err := r.latest(ctx, tableIdealLifestyles, "id, user_id, description, created_at", userID,
		&row.ID, &row.UserID, &row.Description, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get ideal lifestyle: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

func (r *goalRepository) LatestQuarterGoal(ctx context.Context, userID uuid.UUID) (*entity.QuarterGoal, error) {
	row := &entity.QuarterGoal{}
	found, err := r.latest(ctx, tableQuarterGoals, "id, user_id, lifestyle_id, description, created_at", userID,
		&row.ID, &row.UserID, &row.LifestyleID, &row.Description, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get quarter goal: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

func (r *goalRepository) LatestRestrictRule(ctx context.Context, userID uuid.UUID) (*entity.RestrictRule, error) {
	row := &entity.RestrictRule{}
	found, err := r.latest(ctx, tableRestrictRules, "id, user_id, quarter_goal_id, description, created_at", userID,
		&row.ID, &row.UserID, &row.QuarterGoalID, &row.Description, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get restrict rule: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

func (r *goalRepository) LatestMonthlyGoal(ctx context.Context, userID uuid.UUID) (*entity.MonthlyGoal, error) {
	row := &entity.MonthlyGoal{}
	found, err := r.latest(ctx, tableMonthlyGoals, "id, user_id, quarter_id, description, created_at", userID,
		&row.ID, &row.UserID, &row.QuarterID, &row.Description, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly goal: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

func (r *goalRepository) LatestWeeklyGoal(ctx context.Context, userID uuid.UUID) (*entity.WeeklyGoal, error) {
	row := &entity.WeeklyGoal{}
	found, err := r.latest(ctx, tableWeeklyGoals, "id, user_id, monthly_goal_id, description, created_at", userID,
		&row.ID, &row.UserID, &row.MonthlyGoalID, &row.Description, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly goal: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

func (r *goalRepository) RestrictRuleItems(ctx context.Context, ruleID uuid.UUID) ([]*entity.RestrictRuleItem, error) {
	query := `
		SELECT restrict_rule_id, text
		FROM "RESTRICT_RULE_ITEMS"
		WHERE restrict_rule_id = $1
		ORDER BY ctid
	`

	var items []*entity.RestrictRuleItem
	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		rows, err := q.Query(ctx, query, ruleID)
		if err != nil {
			return err
		}
		defer rows.Close()

		items = items[:0]
		for rows.Next() {
			item := &entity.RestrictRuleItem{}
			if err := rows.Scan(&item.RestrictRuleID, &item.Text); err != nil {
				return err
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get restrict rule items: %w", err)
	}

	return items, nil
}

func (r *goalRepository) HasIdealLifestyle(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM "IDEAL_LIFESTYLES" WHERE user_id = $1)`

	var exists bool
	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		return q.QueryRow(ctx, query, userID).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check ideal lifestyle: %w", err)
	}

	return exists, nil
}

func (r *goalRepository) Delete(ctx context.Context, level entity.Level, id uuid.UUID) error {
	table, ok := levelTables[level]
	if !ok {
		return fmt.Errorf("unknown goal level %q", level)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		_, err := q.Exec(ctx, query, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", level, err)
	}

	return nil
}

func (r *goalRepository) DeleteRestrictRuleItems(ctx context.Context, ruleID uuid.UUID) error {
	query := `DELETE FROM "RESTRICT_RULE_ITEMS" WHERE restrict_rule_id = $1`

	err := r.db.Do(ctx, func(ctx context.Context, q recordstore.Querier) error {
		_, err := q.Exec(ctx, query, ruleID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete restrict rule items: %w", err)
	}

	return nil
}
