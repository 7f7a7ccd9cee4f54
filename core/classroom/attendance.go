package classroom

import (
	"github.com/trezcool/smartlearn/core/user"
)

// MarkAttendance replaces today's (UTC) roster for a course.
// Enrolled students missing from `entries` are recorded Absent.
func (svc *Service) MarkAttendance(courseID string, entries []AttendanceEntry) ([]AttendanceRecord, error) {
	return svc.markAttendance(courseID, today(), entries)
}

func (svc *Service) markAttendance(courseID, date string, entries []AttendanceEntry) ([]AttendanceRecord, error) {
	for _, e := range entries {
		if err := svc.validate.Struct(e); err != nil {
			return nil, err
		}
	}

	var records []AttendanceRecord
	err := svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, courseID)
		if !ok {
			return ErrNotFound
		}

		statuses := make(map[string]AttendanceStatus, len(entries))
		order := make([]string, 0, len(course.StudentIDs)+len(entries))
		for _, sid := range course.StudentIDs {
			statuses[sid] = Absent
			order = append(order, sid)
		}
		for _, e := range entries {
			if _, seen := statuses[e.StudentID]; !seen {
				order = append(order, e.StudentID)
			}
			statuses[e.StudentID] = e.Status
		}

		records = make([]AttendanceRecord, 0, len(order))
		for _, sid := range order {
			records = append(records, AttendanceRecord{
				ID:        attendanceID(sid, course.ID, date),
				CourseID:  course.ID,
				StudentID: sid,
				Date:      date,
				Status:    statuses[sid],
			})
		}
		kept := filter(t.attendanceRecords, func(r AttendanceRecord) bool {
			return !(r.CourseID == course.ID && r.Date == date)
		})
		t.attendanceRecords = appendTo(kept, records...)
		t.touch(KeyAttendanceRecords)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AttendancePercentage is the share of Present or Late records for a student in a course.
// ok is false when the student has no records.
func (svc *Service) AttendancePercentage(courseID, studentID string) (pct float64, ok bool) {
	var total, attended int
	for _, r := range svc.store.snapshot().attendanceRecords {
		if r.CourseID != courseID || r.StudentID != studentID {
			continue
		}
		total++
		if r.Status == Present || r.Status == Late {
			attended++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(attended) / float64(total) * 100, true
}
