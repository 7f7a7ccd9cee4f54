package classroom

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

// Drafts are suggestions for teachers; nothing here writes to the store.

// DraftCourseDescription suggests a description for a course title.
func (svc *Service) DraftCourseDescription(ctx context.Context, courseTitle string) (string, error) {
	if err := svc.teacherGenerator(); err != nil {
		return "", err
	}
	title := core.CleanString(courseTitle)
	if title == "" {
		return "", core.NewValidationError(
			errors.New("empty course title"),
			core.FieldError{Field: "title", Error: "this field is required"},
		)
	}
	desc, err := svc.generator.GenerateCourseDescription(ctx, title)
	return desc, errors.Wrap(err, "drafting course description")
}

// DraftFeedback suggests feedback on a submission, to be edited before grading.
func (svc *Service) DraftFeedback(ctx context.Context, submissionID string) (string, error) {
	if err := svc.teacherGenerator(); err != nil {
		return "", err
	}
	st := svc.store.snapshot()
	i, ok := indexOf(st.submissions, func(s Submission) bool { return s.ID == submissionID })
	if !ok {
		return "", ErrNotFound
	}
	sub := st.submissions[i]
	asg, ok := findAssignment(st.assignments, sub.AssignmentID)
	if !ok {
		return "", ErrNotFound
	}
	feedback, err := svc.generator.GenerateAssignmentFeedback(ctx, asg.Title, sub.Content)
	return feedback, errors.Wrap(err, "drafting feedback")
}

// DraftQuizQuestions suggests questions from course material.
// Questions CreateQuiz would reject are left out.
func (svc *Service) DraftQuizQuestions(ctx context.Context, material string) ([]Question, error) {
	if err := svc.teacherGenerator(); err != nil {
		return nil, err
	}
	generated, err := svc.generator.GenerateQuizQuestions(ctx, material)
	if err != nil {
		return nil, errors.Wrap(err, "drafting quiz questions")
	}
	questions := make([]Question, 0, len(generated))
	for _, q := range generated {
		if _, err := cleanQuestions([]Question{q}); err != nil {
			svc.logger.Info("dropping drafted question", map[string]interface{}{"text": q.Text, "reason": err.Error()})
			continue
		}
		questions = append(questions, q.clone())
	}
	return questions, nil
}

func (svc *Service) teacherGenerator() error {
	st := svc.store.snapshot()
	if _, err := authorize(&st, user.RoleTeacher); err != nil {
		return err
	}
	if svc.generator == nil {
		return ErrNoGenerator
	}
	return nil
}
