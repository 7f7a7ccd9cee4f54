package classroom

import (
	"fmt"
	"strconv"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

func (svc *Service) CreateAssignment(na NewAssignment) (Assignment, error) {
	na.Title = core.CleanString(na.Title)
	if err := svc.validate.Struct(na); err != nil {
		return Assignment{}, err
	}

	var asg Assignment
	err := svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, na.CourseID)
		if !ok {
			return ErrNotFound
		}
		asg = Assignment{
			ID:          newID("assign"),
			CourseID:    course.ID,
			Title:       na.Title,
			Description: na.Description,
			DueDate:     na.DueDate.UTC(),
		}
		t.assignments = appendTo(t.assignments, asg)
		t.touch(KeyAssignments)
		t.notify(course.StudentIDs, fmt.Sprintf("New assignment %q in %q.", asg.Title, course.Title), courseLink(course.ID))
		return nil
	})
	if err != nil {
		return Assignment{}, err
	}
	return asg, nil
}

// SubmitAssignment records the signed-in student's work.
// A resubmission replaces the previous one in place, keeping its id and clearing its grade.
func (svc *Service) SubmitAssignment(ns NewSubmission) (Submission, error) {
	if err := svc.validate.Struct(ns); err != nil {
		return Submission{}, err
	}
	if ns.File == nil && core.CleanString(ns.Content) == "" {
		return Submission{}, core.NewValidationError(
			fmt.Errorf("empty submission"),
			core.FieldError{Field: "content", Error: "provide some content or a file"},
		)
	}

	var fileURL, fileName, fileType string
	if ns.File != nil {
		if svc.files == nil {
			return Submission{}, ErrNoFileStore
		}
		url, ct, err := svc.files.Put(*ns.File)
		if err != nil {
			return Submission{}, err
		}
		fileURL, fileName, fileType = url, ns.File.Name, ct
	}

	var (
		sub        Submission
		releaseURL string
	)
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleStudent)
		if err != nil {
			return err
		}
		asg, ok := findAssignment(t.assignments, ns.AssignmentID)
		if !ok {
			return ErrNotFound
		}
		if asg.PastDue(now()) {
			return ErrPastDue
		}
		sub = Submission{
			ID:           newID("sub"),
			AssignmentID: ns.AssignmentID,
			StudentID:    me.ID,
			Content:      ns.Content,
			FileURL:      fileURL,
			FileName:     fileName,
			FileType:     fileType,
			SubmittedAt:  now(),
		}
		for i, existing := range t.submissions {
			if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
				sub.ID = existing.ID
				if existing.FileURL != "" && existing.FileURL != fileURL {
					releaseURL = existing.FileURL
				}
				t.submissions = replaceAt(t.submissions, i, sub)
				t.touch(KeySubmissions)
				return nil
			}
		}
		t.submissions = appendTo(t.submissions, sub)
		t.touch(KeySubmissions)
		return nil
	})
	if err != nil {
		if fileURL != "" {
			svc.files.Release(fileURL)
		}
		return Submission{}, err
	}
	if releaseURL != "" {
		svc.files.Release(releaseURL)
	}
	return sub, nil
}

// GradeSubmission stores a grade (0-100) and notifies the student.
func (svc *Service) GradeSubmission(submissionID string, grade float64, feedback string) (Submission, error) {
	if grade < 0 || grade > 100 {
		return Submission{}, core.NewValidationError(
			fmt.Errorf("grade out of range"),
			core.FieldError{Field: "grade", Error: "grade must be between 0 and 100"},
		)
	}

	var sub Submission
	err := svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		i, ok := indexOf(t.submissions, func(s Submission) bool { return s.ID == submissionID })
		if !ok {
			return ErrNotFound
		}
		gradedAt := now()
		sub = t.submissions[i]
		sub.Grade = &grade
		sub.Feedback = &feedback
		sub.GradedAt = &gradedAt
		t.submissions = replaceAt(t.submissions, i, sub)
		t.touch(KeySubmissions)

		if asg, ok := findAssignment(t.assignments, sub.AssignmentID); ok {
			t.notify(
				[]string{sub.StudentID},
				fmt.Sprintf("Graded: Your submission for %q received a %s%%.", asg.Title, strconv.FormatFloat(grade, 'f', -1, 64)),
				courseLink(asg.CourseID),
			)
		}
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	return sub.clone(), nil
}

func findAssignment(assignments []Assignment, id string) (Assignment, bool) {
	for _, a := range assignments {
		if a.ID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

func indexOf[T any](s []T, match func(T) bool) (int, bool) {
	for i, v := range s {
		if match(v) {
			return i, true
		}
	}
	return -1, false
}
