package entity

import "time"

// Conversation variable names the goal-setting dialogue is expected to populate,
// ordered root to leaf.
const (
	VarIdealFuture  = "Ideal_Future"
	VarQuarterGoal  = "Quarter_goal"
	VarOneMonthGoal = "OneMonth_Goal"
	VarLimitRules   = "Limit_Rules"
	VarOneWeekGoal  = "OneWeek_Goal"
	VarDailyTasks   = "Daily_Tasks"
)

// RequiredVariables lists every variable a complete conversation must carry
var RequiredVariables = []string{
	VarIdealFuture,
	VarQuarterGoal,
	VarOneMonthGoal,
	VarLimitRules,
	VarOneWeekGoal,
	VarDailyTasks,
}

// ConversationVariable is a named value accumulated by the conversation service
type ConversationVariable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ChatRequest is one user utterance sent to the conversation service
type ChatRequest struct {
	Query          string         `json:"query" validate:"required"`
	UserID         string         `json:"userId" validate:"required"`
	ConversationID string         `json:"conversationId,omitempty"`
	Inputs         map[string]any `json:"inputs,omitempty"`
}

// ChatReply is the assistant's answer to a ChatRequest
type ChatReply struct {
	Answer         string    `json:"answer"`
	ConversationID string    `json:"conversationId"`
	MessageID      string    `json:"messageId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CompletionResult reports which required variables are still empty
type CompletionResult struct {
	IsComplete       bool     `json:"isComplete"`
	MissingVariables []string `json:"missingVariables"`
}

// GoalChatResult is returned by a goal chat turn
type GoalChatResult struct {
	Response         *ChatReply `json:"response"`
	IsComplete       bool       `json:"isComplete"`
	MissingVariables []string   `json:"missingVariables"`
}

// GoalVariables carries the six free-text values a hierarchy is built from
type GoalVariables struct {
	IdealFuture  string `json:"idealFuture"`
	QuarterGoal  string `json:"quarterGoal"`
	OneMonthGoal string `json:"oneMonthGoal"`
	LimitRules   string `json:"limitRules"`
	OneWeekGoal  string `json:"oneWeekGoal"`
	DailyTasks   string `json:"dailyTasks"`
}

// VariableValues indexes variables by name. A repeated name keeps its first non-empty value.
func VariableValues(vars []ConversationVariable) map[string]string {
	byName := make(map[string]string, len(vars))
	for _, v := range vars {
		if byName[v.Name] == "" {
			byName[v.Name] = v.Value
		}
	}
	return byName
}

// GoalVariablesFrom picks the named values out of a variable list. Absent names map to "".
func GoalVariablesFrom(vars []ConversationVariable) GoalVariables {
	byName := VariableValues(vars)

	return GoalVariables{
		IdealFuture:  byName[VarIdealFuture],
		QuarterGoal:  byName[VarQuarterGoal],
		OneMonthGoal: byName[VarOneMonthGoal],
		LimitRules:   byName[VarLimitRules],
		OneWeekGoal:  byName[VarOneWeekGoal],
		DailyTasks:   byName[VarDailyTasks],
	}
}
