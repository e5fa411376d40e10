package postgres

import (
	"fmt"

	"achivo/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

const (
	tableUsers             = `"USERS"`
	tableIdealLifestyles   = `"IDEAL_LIFESTYLES"`
	tableQuarterGoals      = `"QUARTER_GOALS"`
	tableRestrictRules     = `"Restrict_Rule"`
	tableRestrictRuleItems = `"RESTRICT_RULE_ITEMS"`
	tableMonthlyGoals      = `"MONTHLY_GOALS"`
	tableWeeklyGoals       = `"WEEKLY_GOALS"`
	tableTodos             = `"TODOS"`
)

var levelTables = map[entity.Level]string{
	entity.LevelIdealLifestyle: tableIdealLifestyles,
	entity.LevelQuarterGoal:    tableQuarterGoals,
	entity.LevelRestrictRule:   tableRestrictRules,
	entity.LevelMonthlyGoal:    tableMonthlyGoals,
	entity.LevelWeeklyGoal:     tableWeeklyGoals,
	entity.LevelTodo:           tableTodos,
}

var validate = validator.New()

func validateRow(table string, row any) error {
	if err := validate.Struct(row); err != nil {
		return fmt.Errorf("invalid %s row: %w", table, err)
	}
	return nil
}
