package classroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartlearn/core/user"
)

func TestService_CreateCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.register(t, "Ms Frizzle", "frizzle@smartlearn.test", user.RoleTeacher)

	course, err := env.svc.CreateCourse(NewCourse{Title: " Algebra I ", Description: "Linear equations"})
	require.NoError(t, err)
	assert.Equal(t, "Algebra I", course.Title)
	assert.Equal(t, teacher.ID, course.TeacherID)
	assert.Empty(t, course.StudentIDs)
	assert.Equal(t, []Course{course}, env.svc.CoursesByTeacher(teacher.ID))

	tests := []struct {
		name  string
		nc    NewCourse
		field string
	}{
		{name: "blank title", nc: NewCourse{Title: "   "}, field: "title"},
		{name: "bad date", nc: NewCourse{Title: "Geometry", StartDate: "01/02/2024"}, field: "start_date"},
		{name: "ends before start", nc: NewCourse{Title: "Geometry", StartDate: "2024-06-01", EndDate: "2024-01-01"}, field: "end_date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.CreateCourse(tc.nc)
			require.Error(t, err)
			assert.Equal(t, tc.field, env.svc.FieldErrors(err)[0].Field)
		})
	}

	env.register(t, "Ada Student", "ada@smartlearn.test", user.RoleStudent)
	_, err = env.svc.CreateCourse(NewCourse{Title: "Geometry"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Len(t, env.svc.Courses(), 1)
}

func TestService_EnrollInCourse(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)

	assert.Equal(t, []string{fx.ada.ID, fx.bob.ID}, fx.course.StudentIDs)

	env.login(t, fx.ada)
	require.NoError(t, env.svc.EnrollInCourse(fx.course.ID), "enrolling twice is a no-op")
	course, err := env.svc.FindCourseByID(fx.course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fx.ada.ID, fx.bob.ID}, course.StudentIDs)
	assert.Len(t, env.svc.CoursesByStudent(fx.ada.ID), 1)

	assert.ErrorIs(t, env.svc.EnrollInCourse("course-404"), ErrNotFound)

	env.login(t, fx.teacher)
	assert.ErrorIs(t, env.svc.EnrollInCourse(fx.course.ID), ErrPermissionDenied)
}

func TestService_GradingFlow(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)

	hw1, err := env.svc.CreateAssignment(NewAssignment{
		CourseID: fx.course.ID,
		Title:    "HW1",
		DueDate:  time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// every enrolled student is told about the new assignment
	for _, s := range []user.User{fx.ada, fx.bob} {
		ns := env.svc.FindNotificationsByUserID(s.ID)
		require.Len(t, ns, 1)
		assert.Equal(t, `New assignment "HW1" in "Algebra I".`, ns[0].Message)
		assert.Equal(t, "/course/"+fx.course.ID, ns[0].Link)
		assert.False(t, ns[0].IsRead)
	}
	assert.Empty(t, env.svc.FindNotificationsByUserID(fx.teacher.ID))

	env.login(t, fx.ada)
	sub, err := env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "x = 2"})
	require.NoError(t, err)
	assert.False(t, sub.IsGraded())

	env.login(t, fx.teacher)
	graded, err := env.svc.GradeSubmission(sub.ID, 85, "Nice work")
	require.NoError(t, err)
	require.True(t, graded.IsGraded())
	assert.Equal(t, 85.0, *graded.Grade)
	assert.Equal(t, "Nice work", *graded.Feedback)
	assert.NotNil(t, graded.GradedAt)

	ns := env.svc.FindNotificationsByUserID(fx.ada.ID)
	require.Len(t, ns, 2)
	assert.Equal(t, `Graded: Your submission for "HW1" received a 85%.`, ns[0].Message, "newest first")
	assert.Equal(t, 2, env.svc.UnreadNotificationCount(fx.ada.ID))

	grade, ok := env.svc.CalculateCourseGrade(fx.course.ID, fx.ada.ID)
	require.True(t, ok)
	assert.Equal(t, 85.0, grade)
	_, ok = env.svc.CalculateCourseGrade(fx.course.ID, fx.bob.ID)
	assert.False(t, ok)

	// resubmitting keeps the id and clears the grade
	env.login(t, fx.ada)
	resub, err := env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "x = 2, checked"})
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resub.ID)
	assert.False(t, resub.IsGraded())
	subs := env.svc.FindSubmissionsByStudentID(fx.ada.ID, hw1.ID)
	require.Len(t, subs, 1)
	assert.Equal(t, "x = 2, checked", subs[0].Content)
	assert.Len(t, env.svc.FindSubmissionsByAssignmentID(hw1.ID), 1)
}

func TestService_GradeSubmissionErrors(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)
	hw1, err := env.svc.CreateAssignment(NewAssignment{CourseID: fx.course.ID, Title: "HW1", DueDate: time.Now()})
	require.NoError(t, err)

	env.login(t, fx.ada)
	sub, err := env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "answer"})
	require.NoError(t, err)

	_, err = env.svc.GradeSubmission(sub.ID, 100, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	env.login(t, fx.teacher)
	for _, g := range []float64{-1, 100.5} {
		_, err = env.svc.GradeSubmission(sub.ID, g, "")
		require.Error(t, err)
		assert.Equal(t, "grade", env.svc.FieldErrors(err)[0].Field)
	}
	_, err = env.svc.GradeSubmission("sub-404", 50, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.GradeSubmission(sub.ID, 0, "")
	assert.NoError(t, err, "zero is a grade")
	grade, ok := env.svc.CalculateCourseGrade(fx.course.ID, fx.ada.ID)
	assert.True(t, ok)
	assert.Zero(t, grade)
}

func TestService_SubmitAssignmentFiles(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)
	hw1, err := env.svc.CreateAssignment(NewAssignment{CourseID: fx.course.ID, Title: "HW1", DueDate: time.Now()})
	require.NoError(t, err)

	env.login(t, fx.ada)
	_, err = env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "  "})
	require.Error(t, err)
	assert.Equal(t, "content", env.svc.FieldErrors(err)[0].Field)

	sub, err := env.svc.SubmitAssignment(NewSubmission{
		AssignmentID: hw1.ID,
		File:         &File{Name: "hw1.pdf", Type: "application/pdf", Content: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hw1.pdf", sub.FileName)
	assert.Equal(t, "application/pdf", sub.FileType)
	firstURL := sub.FileURL

	sub, err = env.svc.SubmitAssignment(NewSubmission{
		AssignmentID: hw1.ID,
		File:         &File{Name: "hw1-v2.pdf", Type: "application/pdf", Content: []byte("%PDF-1.5")},
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstURL, sub.FileURL)
	assert.Equal(t, []string{firstURL}, env.files.released, "replaced file is released")

	// a failed write releases the new upload
	_, err = env.svc.SubmitAssignment(NewSubmission{
		AssignmentID: "assign-404",
		File:         &File{Name: "lost.pdf", Content: []byte("%PDF")},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, env.files.released, 2)
	assert.Len(t, env.files.stored, 1)

	env.login(t, fx.teacher)
	_, err = env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "teacher answer"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestService_Notifications(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)
	for _, title := range []string{"HW1", "HW2", "HW3"} {
		_, err := env.svc.CreateAssignment(NewAssignment{CourseID: fx.course.ID, Title: title, DueDate: time.Now()})
		require.NoError(t, err)
	}

	adaNotes := env.svc.FindNotificationsByUserID(fx.ada.ID)
	require.Len(t, adaNotes, 3)
	assert.Contains(t, adaNotes[0].Message, "HW3")

	// teacher is signed in
	assert.ErrorIs(t, env.svc.MarkNotificationAsRead(adaNotes[0].ID), ErrPermissionDenied)

	env.login(t, fx.ada)
	require.NoError(t, env.svc.MarkNotificationAsRead(adaNotes[0].ID))
	require.NoError(t, env.svc.MarkNotificationAsRead(adaNotes[0].ID), "marking twice is a no-op")
	assert.Equal(t, 2, env.svc.UnreadNotificationCount(fx.ada.ID))
	assert.ErrorIs(t, env.svc.MarkNotificationAsRead("notif-404"), ErrNotFound)

	require.NoError(t, env.svc.MarkAllNotificationsAsRead())
	assert.Zero(t, env.svc.UnreadNotificationCount(fx.ada.ID))
	assert.Equal(t, 3, env.svc.UnreadNotificationCount(fx.bob.ID), "other users are untouched")
}

func TestService_SubmitAssignmentPastDue(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)
	hw1, err := env.svc.CreateAssignment(NewAssignment{
		CourseID: fx.course.ID,
		Title:    "HW1",
		DueDate:  time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	env.login(t, fx.ada)
	_, err = env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "same day"})
	require.NoError(t, err, "the whole due day counts")

	tests := []struct {
		name string
		at   time.Time
		err  error
	}{
		{name: "last second", at: time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)},
		{name: "next day", at: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), err: ErrPastDue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			at := tc.at
			orig := NowFunc
			NowFunc = func() time.Time { return at }
			defer func() { NowFunc = orig }()

			_, err := env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: tc.name})
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
		})
	}
	subs := env.svc.FindSubmissionsByStudentID(fx.ada.ID, hw1.ID)
	require.Len(t, subs, 1)
	assert.Equal(t, "last second", subs[0].Content, "a late submission leaves the previous one alone")
}

func TestService_CompletedCourses(t *testing.T) {
	env := newTestEnv(t)
	fx := env.seed(t)
	hw1, err := env.svc.CreateAssignment(NewAssignment{CourseID: fx.course.ID, Title: "HW1", DueDate: time.Now()})
	require.NoError(t, err)
	_, err = env.svc.CreateCourse(NewCourse{Title: "Open ended"})
	require.NoError(t, err)

	env.login(t, fx.ada)
	sub, err := env.svc.SubmitAssignment(NewSubmission{AssignmentID: hw1.ID, Content: "answer"})
	require.NoError(t, err)
	env.login(t, fx.teacher)
	_, err = env.svc.GradeSubmission(sub.ID, 72, "")
	require.NoError(t, err)

	assert.Empty(t, env.svc.CompletedCourses(fx.ada.ID), "the course ends 2024-06-28")

	orig := NowFunc
	NowFunc = func() time.Time { return time.Date(2024, 6, 29, 10, 0, 0, 0, time.UTC) }
	defer func() { NowFunc = orig }()

	done := env.svc.CompletedCourses(fx.ada.ID)
	require.Len(t, done, 1)
	assert.Equal(t, fx.course.ID, done[0].Course.ID)
	assert.True(t, done[0].Graded)
	assert.Equal(t, 72.0, done[0].Grade)

	done = env.svc.CompletedCourses(fx.bob.ID)
	require.Len(t, done, 1)
	assert.False(t, done[0].Graded)
	assert.Empty(t, env.svc.CompletedCourses(fx.teacher.ID))
}
