package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MaxScore is the upper bound of a grade
const MaxScore = 100.0

// Grade represents a score given to a student for a task.
// A nil Score means the grade is still pending.
type Grade struct {
	ID        int        `json:"id"`
	TaskID    int        `json:"task_id"`
	StudentID int        `json:"student_id"`
	Score     *float64   `json:"score"`
	GradedAt  *time.Time `json:"graded_at"`
}

// AddGradeRequest represents a request to grade a student's task
type AddGradeRequest struct {
	TaskID    int      `json:"task_id"`
	StudentID int      `json:"student_id"`
	Score     *float64 `json:"score"`
}

// Validate checks the grade payload
func (r AddGradeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TaskID, validation.Required, validation.Min(1)),
		validation.Field(&r.StudentID, validation.Required, validation.Min(1)),
		validation.Field(&r.Score, validation.By(scoreInRange)),
	)
}

func scoreInRange(value interface{}) error {
	score, ok := value.(*float64)
	if !ok || score == nil {
		return nil
	}
	if *score < 0 || *score > MaxScore {
		return errors.New("must be between 0 and 100")
	}
	return nil
}

// StudentGrade is one row of a student's report
type StudentGrade struct {
	TaskID   int        `json:"task_id"`
	Task     string     `json:"task"`
	Weight   float64    `json:"weight"`
	Score    *float64   `json:"score"`
	GradedAt *time.Time `json:"graded_at"`
}

// StudentGradesReport holds a student's grades and the weighted final average.
// FinalAverage is nil when no grade has a score yet.
type StudentGradesReport struct {
	StudentID    int            `json:"student_id"`
	Grades       []StudentGrade `json:"grades"`
	FinalAverage *float64       `json:"final_average"`
}
