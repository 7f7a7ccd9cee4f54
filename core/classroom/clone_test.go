package classroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ResultsDoNotAliasState(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)

	t.Run("course students", func(t *testing.T) {
		course, err := env.svc.FindCourseByID(fx.course.ID)
		require.NoError(t, err)
		course.StudentIDs[0] = "intruder"
		env.svc.Courses()[0].StudentIDs[1] = "intruder"
		env.svc.CoursesByStudent(fx.ada.ID)[0].StudentIDs[0] = "intruder"

		course, err = env.svc.FindCourseByID(fx.course.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{fx.ada.ID, fx.bob.ID}, course.StudentIDs)
		assert.True(t, course.HasStudent(fx.ada.ID))
	})

	t.Run("quiz options", func(t *testing.T) {
		nq := algebraQuiz(fx.course.ID)
		opts := nq.Questions[0].Options
		quiz, err := env.svc.CreateQuiz(nq)
		require.NoError(t, err)

		opts[1] = "22"
		quiz.Questions[0].Options[0] = "11"
		quiz.Questions[1].Options[0] = "Maybe"
		env.svc.FindQuizzesByCourseID(fx.course.ID)[0].Questions[3].Options[1] = "Perhaps"

		stored := env.svc.FindQuizzesByCourseID(fx.course.ID)[0]
		assert.Equal(t, []string{"1", "2", "3", "4"}, stored.Questions[0].Options)
		assert.Equal(t, []string{"True", "False"}, stored.Questions[1].Options)
		assert.Equal(t, []string{"True", "False"}, stored.Questions[3].Options)
		assert.Equal(t, []string{"True", "False"}, trueFalseOptions)
	})

	t.Run("quiz answers", func(t *testing.T) {
		quiz := env.svc.FindQuizzesByCourseID(fx.course.ID)[0]
		env.login(t, fx.ada)
		answers := map[string]string{quiz.Questions[0].ID: "2"}
		attempt, err := env.svc.SubmitQuiz(quiz.ID, answers)
		require.NoError(t, err)

		answers[quiz.Questions[1].ID] = "True"
		attempt.Answers[quiz.Questions[2].ID] = "0"
		env.svc.FindQuizAttemptsByQuizID(quiz.ID)[0].Answers[quiz.Questions[3].ID] = "False"

		stored, ok := env.svc.FindQuizAttemptByStudent(quiz.ID, fx.ada.ID)
		require.True(t, ok)
		assert.Equal(t, map[string]string{quiz.Questions[0].ID: "2"}, stored.Answers)
	})

	t.Run("group members", func(t *testing.T) {
		env.login(t, fx.ada)
		grp, err := env.svc.CreateGroup(NewGroup{CourseID: fx.course.ID, Name: "Study buddies"})
		require.NoError(t, err)
		grp.MemberIDs[0] = "intruder"
		env.svc.FindGroupsByCourseID(fx.course.ID)[0].MemberIDs[0] = "intruder"

		groups := env.svc.FindGroupsByCourseID(fx.course.ID)
		require.Len(t, groups, 1)
		assert.Equal(t, []string{fx.ada.ID}, groups[0].MemberIDs)
	})

	t.Run("submission grade", func(t *testing.T) {
		env.login(t, fx.teacher)
		hw1, err := env.svc.CreateAssignment(NewAssignment{CourseID: fx.course.ID, Title: "HW1", DueDate: time.Now()})
		require.NoError(t, err)
		env.login(t, fx.bob)
		sub, err := env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "answer"})
		require.NoError(t, err)
		env.login(t, fx.teacher)
		graded, err := env.svc.GradeSubmission(sub.ID, 60, "ok")
		require.NoError(t, err)

		*graded.Grade = 100
		*env.svc.FindSubmissionsByAssignmentID(hw1.ID)[0].Feedback = "perfect"

		subs := env.svc.FindSubmissionsByStudentID(fx.bob.ID, hw1.ID)
		require.Len(t, subs, 1)
		assert.Equal(t, 60.0, *subs[0].Grade)
		assert.Equal(t, "ok", *subs[0].Feedback)
	})
}
