package classroom

import (
	"fmt"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

func courseLink(courseID string) string { return "/course/" + courseID }

func (svc *Service) CreateCourse(nc NewCourse) (Course, error) {
	nc.Title = core.CleanString(nc.Title)
	if err := svc.validate.Struct(nc); err != nil {
		return Course{}, err
	}
	if nc.StartDate != "" && nc.EndDate != "" && nc.EndDate < nc.StartDate {
		return Course{}, core.NewValidationError(
			fmt.Errorf("end date is before start date"),
			core.FieldError{Field: "end_date", Error: "end date cannot be before start date"},
		)
	}

	var course Course
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleTeacher)
		if err != nil {
			return err
		}
		course = Course{
			ID:          newID("course"),
			Title:       nc.Title,
			Description: nc.Description,
			StartDate:   nc.StartDate,
			EndDate:     nc.EndDate,
			TeacherID:   me.ID,
			StudentIDs:  []string{},
		}
		t.courses = appendTo(t.courses, course)
		t.touch(KeyCourses)
		return nil
	})
	if err != nil {
		return Course{}, err
	}
	return course.clone(), nil
}

// EnrollInCourse adds the signed-in student to the course. Enrolling twice is a no-op.
func (svc *Service) EnrollInCourse(courseID string) error {
	return svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleStudent)
		if err != nil {
			return err
		}
		course, i, ok := findCourse(t.courses, courseID)
		if !ok {
			return ErrNotFound
		}
		if course.HasStudent(me.ID) {
			return nil
		}
		course.StudentIDs = appendTo(course.StudentIDs, me.ID)
		t.courses = replaceAt(t.courses, i, course)
		t.touch(KeyCourses)
		return nil
	})
}
