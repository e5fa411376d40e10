package handler

import (
	"encoding/json"
	"net/http"

	"achivo/internal/middleware"
)

// ListTasks returns the user's todos, newest first
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Success 200 {object} object{tasks=[]entity.Task}
// @Failure 401 {object} object{error=string}
// @Router /api/tasks [get]
func (h *GoalHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	principal := middleware.GetPrincipal(r)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": h.taskService.GetUserTasks(r.Context(), principal.UserID),
	})
}

// UpdateTask marks a todo completed or open
// @Summary Update task completion
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body object{id=string,completed=bool} true "Task update"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /api/tasks/update [post]
func (h *GoalHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": h.taskService.UpdateTaskCompletion(r.Context(), req.ID, req.Completed),
	})
}
