package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// GradeService is the interface that wraps methods for grading
type GradeService interface {
	// Method AddGrade records a grade; a nil score records it as pending.
	AddGrade(ctx context.Context, req models.AddGradeRequest) (*models.Grade, error)
	CountPending(ctx context.Context) (int, error)
	// Method StudentReport returns a student's grades with the weighted final average.
	//
	// If "studentID" is not a student, models.ErrNotFound will be returned.
	StudentReport(ctx context.Context, studentID int) (*models.StudentGradesReport, error)
}

// GradeHandler handles professor grading requests
type GradeHandler struct {
	BaseHandler
	gradeService GradeService
}

// NewGradeHandler creates a new grade handler
func NewGradeHandler(gradeService GradeService, logger *zap.Logger) *GradeHandler {
	return &GradeHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		gradeService: gradeService,
	}
}

// RegisterRoutes registers all grade handler routes
func (h *GradeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/grades", func(r chi.Router) {
		r.Post("/", h.AddGrade)
		r.Get("/pending/count", h.CountPending)
		r.Get("/students/{id}", h.StudentGrades)
	})
}

// AddGrade handles POST /grades
// @Summary Grade a student's task
// @Description Score is optional; a grade without score counts as pending
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AddGradeRequest true "Grade data"
// @Success 201 {object} models.Grade "Recorded grade"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Task or student not found"
// @Router /grades [post]
func (h *GradeHandler) AddGrade(w http.ResponseWriter, r *http.Request) {
	var req models.AddGradeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	grade, err := h.gradeService.AddGrade(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, grade)
}

// CountPending handles GET /grades/pending/count
// @Summary Count pending grades
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int "Number of pending grades"
// @Router /grades/pending/count [get]
func (h *GradeHandler) CountPending(w http.ResponseWriter, r *http.Request) {
	count, err := h.gradeService.CountPending(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int{"pending_grades": count})
}

// StudentGrades handles GET /grades/students/{id}
// @Summary Grades of a student
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} models.StudentGradesReport "Grades and weighted average"
// @Failure 404 {object} map[string]string "Student not found"
// @Router /grades/students/{id} [get]
func (h *GradeHandler) StudentGrades(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	report, err := h.gradeService.StudentReport(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, report)
}
