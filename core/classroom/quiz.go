package classroom

import (
	"fmt"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

const multipleChoiceOptions = 4

var trueFalseOptions = []string{"True", "False"}

// cleanQuestions checks the answers of each question and fills the true/false options.
func cleanQuestions(questions []Question) ([]Question, error) {
	cleaned := make([]Question, 0, len(questions))
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d].correct_answer", i)
		switch q.Type {
		case MultipleChoice:
			if len(q.Options) != multipleChoiceOptions {
				return nil, core.NewValidationError(
					fmt.Errorf("question %d needs %d options, got %d", i+1, multipleChoiceOptions, len(q.Options)),
					core.FieldError{Field: fmt.Sprintf("questions[%d].options", i), Error: "multiple-choice questions need exactly 4 options"},
				)
			}
			if !contains(q.Options, q.CorrectAnswer) {
				return nil, core.NewValidationError(
					fmt.Errorf("question %d: correct answer is not an option", i+1),
					core.FieldError{Field: field, Error: "the correct answer must be one of the options"},
				)
			}
			q.Options = cloneStrings(q.Options)
		case TrueFalse:
			if !contains(trueFalseOptions, q.CorrectAnswer) {
				return nil, core.NewValidationError(
					fmt.Errorf("question %d: correct answer must be True or False", i+1),
					core.FieldError{Field: field, Error: "the correct answer must be True or False"},
				)
			}
			q.Options = cloneStrings(trueFalseOptions)
		}
		q.ID = newID("q")
		cleaned = append(cleaned, q)
	}
	return cleaned, nil
}

func (svc *Service) CreateQuiz(nq NewQuiz) (Quiz, error) {
	nq.Title = core.CleanString(nq.Title)
	if err := svc.validate.Struct(nq); err != nil {
		return Quiz{}, err
	}
	questions, err := cleanQuestions(nq.Questions)
	if err != nil {
		return Quiz{}, err
	}

	var quiz Quiz
	err = svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, nq.CourseID)
		if !ok {
			return ErrNotFound
		}
		quiz = Quiz{
			ID:        newID("quiz"),
			CourseID:  course.ID,
			Title:     nq.Title,
			Questions: questions,
		}
		t.quizzes = appendTo(t.quizzes, quiz)
		t.touch(KeyQuizzes)
		t.notify(course.StudentIDs, fmt.Sprintf("New quiz %q in %q.", quiz.Title, course.Title), courseLink(course.ID))
		return nil
	})
	if err != nil {
		return Quiz{}, err
	}
	return quiz.clone(), nil
}

// Score returns the percentage of questions whose answer matches exactly.
func (q Quiz) Score(answers map[string]string) float64 {
	if len(q.Questions) == 0 {
		return 0
	}
	var correct int
	for _, question := range q.Questions {
		if ans, ok := answers[question.ID]; ok && ans == question.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(q.Questions)) * 100
}

// SubmitQuiz scores and records the signed-in student's only attempt at a quiz.
func (svc *Service) SubmitQuiz(quizID string, answers map[string]string) (QuizAttempt, error) {
	var attempt QuizAttempt
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleStudent)
		if err != nil {
			return err
		}
		i, ok := indexOf(t.quizzes, func(q Quiz) bool { return q.ID == quizID })
		if !ok {
			return ErrNotFound
		}
		if _, taken := findQuizAttempt(t.quizAttempts, quizID, me.ID); taken {
			return ErrQuizAlreadyTaken
		}
		quiz := t.quizzes[i]
		kept := make(map[string]string, len(answers))
		for k, v := range answers {
			kept[k] = v
		}
		attempt = QuizAttempt{
			ID:          newID("attempt"),
			QuizID:      quiz.ID,
			StudentID:   me.ID,
			Answers:     kept,
			Score:       quiz.Score(answers),
			SubmittedAt: now(),
		}
		t.quizAttempts = appendTo(t.quizAttempts, attempt)
		t.touch(KeyQuizAttempts)
		return nil
	})
	if err != nil {
		return QuizAttempt{}, err
	}
	return attempt.clone(), nil
}

func findQuizAttempt(attempts []QuizAttempt, quizID, studentID string) (QuizAttempt, bool) {
	for _, a := range attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			return a, true
		}
	}
	return QuizAttempt{}, false
}
