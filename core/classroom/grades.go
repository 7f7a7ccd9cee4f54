package classroom

// CalculateCourseGrade averages a student's graded submissions and quiz scores in a course.
// Each graded item weighs the same. ok is false when nothing is graded yet.
func (svc *Service) CalculateCourseGrade(courseID, studentID string) (grade float64, ok bool) {
	return calculateCourseGrade(svc.store.snapshot(), courseID, studentID)
}

func calculateCourseGrade(st state, courseID, studentID string) (float64, bool) {
	assignments := make(map[string]bool)
	for _, a := range st.assignments {
		if a.CourseID == courseID {
			assignments[a.ID] = true
		}
	}
	quizzes := make(map[string]bool)
	for _, q := range st.quizzes {
		if q.CourseID == courseID {
			quizzes[q.ID] = true
		}
	}

	var (
		sum   float64
		count int
	)
	for _, s := range st.submissions {
		if s.StudentID == studentID && assignments[s.AssignmentID] && s.IsGraded() {
			sum += *s.Grade
			count++
		}
	}
	for _, a := range st.quizAttempts {
		if a.StudentID == studentID && quizzes[a.QuizID] {
			sum += a.Score
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// CompletedCourse is a course whose end date has passed, with the student's final grade.
type CompletedCourse struct {
	Course Course  `json:"course"`
	Grade  float64 `json:"grade"`
	Graded bool    `json:"graded"`
}

// CompletedCourses lists the student's courses that ended before today.
func (svc *Service) CompletedCourses(studentID string) []CompletedCourse {
	st := svc.store.snapshot()
	day := today()
	var out []CompletedCourse
	for _, c := range st.courses {
		if !c.HasStudent(studentID) || c.EndDate == "" || c.EndDate >= day {
			continue
		}
		grade, ok := calculateCourseGrade(st, c.ID, studentID)
		out = append(out, CompletedCourse{Course: c.clone(), Grade: grade, Graded: ok})
	}
	return out
}

type (
	AssignmentStat struct {
		AssignmentID    string  `json:"assignment_id"`
		Title           string  `json:"title"`
		SubmissionCount int     `json:"submission_count"`
		SubmissionRate  float64 `json:"submission_rate"` // percentage of enrolled students
		AverageGrade    float64 `json:"average_grade"`   // over graded submissions, 0 when none
	}

	StudentStat struct {
		StudentID      string  `json:"student_id"`
		Name           string  `json:"name"`
		SubmittedCount int     `json:"submitted_count"`
		AverageGrade   float64 `json:"average_grade"` // over graded submissions, 0 when none
	}

	CourseReport struct {
		CourseID            string           `json:"course_id"`
		CourseTitle         string           `json:"course_title"`
		StudentCount        int              `json:"student_count"`
		OverallAverageGrade float64          `json:"overall_average_grade"`
		Assignments         []AssignmentStat `json:"assignments"`
		Students            []StudentStat    `json:"students"`
	}
)

// CourseReport summarizes submissions and grades for a course.
func (svc *Service) CourseReport(courseID string) (CourseReport, error) {
	st := svc.store.snapshot()
	course, _, ok := findCourse(st.courses, courseID)
	if !ok {
		return CourseReport{}, ErrNotFound
	}

	rep := CourseReport{
		CourseID:     course.ID,
		CourseTitle:  course.Title,
		StudentCount: len(course.StudentIDs),
		Assignments:  make([]AssignmentStat, 0),
		Students:     make([]StudentStat, 0, len(course.StudentIDs)),
	}

	type acc struct {
		count, graded int
		sum           float64
	}
	var overall acc
	byAssignment := make(map[string]*acc)
	byStudent := make(map[string]*acc)
	for _, a := range st.assignments {
		if a.CourseID == course.ID {
			byAssignment[a.ID] = &acc{}
		}
	}
	for _, sid := range course.StudentIDs {
		byStudent[sid] = &acc{}
	}

	for _, s := range st.submissions {
		aAcc, ok := byAssignment[s.AssignmentID]
		if !ok {
			continue
		}
		aAcc.count++
		sAcc := byStudent[s.StudentID]
		if sAcc != nil {
			sAcc.count++
		}
		if s.IsGraded() {
			aAcc.graded++
			aAcc.sum += *s.Grade
			overall.graded++
			overall.sum += *s.Grade
			if sAcc != nil {
				sAcc.graded++
				sAcc.sum += *s.Grade
			}
		}
	}

	mean := func(a *acc) float64 {
		if a.graded == 0 {
			return 0
		}
		return a.sum / float64(a.graded)
	}
	rep.OverallAverageGrade = mean(&overall)

	for _, a := range st.assignments {
		aAcc, ok := byAssignment[a.ID]
		if !ok {
			continue
		}
		var rate float64
		if rep.StudentCount > 0 {
			rate = float64(aAcc.count) / float64(rep.StudentCount) * 100
		}
		rep.Assignments = append(rep.Assignments, AssignmentStat{
			AssignmentID:    a.ID,
			Title:           a.Title,
			SubmissionCount: aAcc.count,
			SubmissionRate:  rate,
			AverageGrade:    mean(aAcc),
		})
	}
	for _, sid := range course.StudentIDs {
		name := sid
		if usr, ok := findUser(st.users, sid); ok {
			name = usr.Name
		}
		rep.Students = append(rep.Students, StudentStat{
			StudentID:      sid,
			Name:           name,
			SubmittedCount: byStudent[sid].count,
			AverageGrade:   mean(byStudent[sid]),
		})
	}
	return rep, nil
}
