package handler

import (
	"net/http"

	"achivo/internal/domain/service"
	"achivo/internal/middleware"
)

// GoalHandler serves the signed-in user's goals and tasks
type GoalHandler struct {
	goalReader  service.GoalReader
	taskService service.TaskService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalReader service.GoalReader, taskService service.TaskService) *GoalHandler {
	return &GoalHandler{
		goalReader:  goalReader,
		taskService: taskService,
	}
}

// GetGoals returns the latest goal of every level
// @Summary Get goals
// @Tags goals
// @Produce json
// @Success 200 {object} entity.GoalData
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/goals [get]
func (h *GoalHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principal := middleware.GetPrincipal(r)

	goals := h.goalReader.GetUserGoals(r.Context(), principal.UserID)
	if goals == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to load goals",
		})
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// HasGoals reports whether the user has set an ideal lifestyle
// @Summary Check goals exist
// @Tags goals
// @Produce json
// @Success 200 {object} object{hasGoals=bool}
// @Failure 401 {object} object{error=string}
// @Router /api/goals/exists [get]
func (h *GoalHandler) HasGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principal := middleware.GetPrincipal(r)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasGoals": h.goalReader.CheckUserHasGoals(r.Context(), principal.UserID),
	})
}
