package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	authMiddleware "github.com/gradesystem/backend/internal/auth/middleware"
	"go.uber.org/zap"
)

// StudentHandler serves the estudiante's own view
type StudentHandler struct {
	BaseHandler
	taskService  TaskService
	gradeService GradeService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(taskService TaskService, gradeService GradeService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		taskService:  taskService,
		gradeService: gradeService,
	}
}

// RegisterRoutes registers all student handler routes
func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/student", func(r chi.Router) {
		r.Get("/tasks", h.MyTasks)
		r.Get("/grades", h.MyGrades)
	})
}

// MyTasks handles GET /student/tasks
// @Summary Tasks visible to the student
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Task "Tasks"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /student/tasks [get]
func (h *StudentHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tasks)
}

// MyGrades handles GET /student/grades
// @Summary Own grades and weighted average
// @Description The student is taken from the session token
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.StudentGradesReport "Grades and weighted average"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /student/grades [get]
func (h *StudentHandler) MyGrades(w http.ResponseWriter, r *http.Request) {
	claims, ok := authMiddleware.ClaimsFromContext(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.gradeService.StudentReport(r.Context(), claims.UserID)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, report)
}
