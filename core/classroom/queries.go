package classroom

import (
	"sort"
	"strings"

	"github.com/trezcool/smartlearn/core/user"
)

// CurrentUser returns the signed-in user, if any.
func (svc *Service) CurrentUser() (user.User, bool) {
	st := svc.store.snapshot()
	if st.currentUser == nil {
		return user.User{}, false
	}
	return st.currentUser.Clone(), true
}

func (svc *Service) Users() []user.User {
	return cloneUsers(svc.store.snapshot().users)
}

func (svc *Service) FindUserByID(id string) (user.User, error) {
	if usr, ok := findUser(svc.store.snapshot().users, id); ok {
		return usr.Clone(), nil
	}
	return user.User{}, ErrNotFound
}

func (svc *Service) FindUserByEmail(email string) (user.User, error) {
	for _, u := range svc.store.snapshot().users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u.Clone(), nil
		}
	}
	return user.User{}, ErrNotFound
}

func (svc *Service) Courses() []Course {
	return cloneEach(svc.store.snapshot().courses)
}

func (svc *Service) FindCourseByID(id string) (Course, error) {
	if c, _, ok := findCourse(svc.store.snapshot().courses, id); ok {
		return c.clone(), nil
	}
	return Course{}, ErrNotFound
}

func (svc *Service) CoursesByTeacher(teacherID string) []Course {
	return cloneEach(filter(svc.store.snapshot().courses, func(c Course) bool { return c.TeacherID == teacherID }))
}

func (svc *Service) CoursesByStudent(studentID string) []Course {
	return cloneEach(filter(svc.store.snapshot().courses, func(c Course) bool { return c.HasStudent(studentID) }))
}

func (svc *Service) FindAssignmentByID(id string) (Assignment, error) {
	if a, ok := findAssignment(svc.store.snapshot().assignments, id); ok {
		return a, nil
	}
	return Assignment{}, ErrNotFound
}

func (svc *Service) FindAssignmentsByCourseID(courseID string) []Assignment {
	return filter(svc.store.snapshot().assignments, func(a Assignment) bool { return a.CourseID == courseID })
}

func (svc *Service) FindSubmissionsByAssignmentID(assignmentID string) []Submission {
	return cloneEach(filter(svc.store.snapshot().submissions, func(s Submission) bool { return s.AssignmentID == assignmentID }))
}

// FindSubmissionsByStudentID returns the student's submissions for one assignment (at most one).
func (svc *Service) FindSubmissionsByStudentID(studentID, assignmentID string) []Submission {
	return cloneEach(filter(svc.store.snapshot().submissions, func(s Submission) bool {
		return s.StudentID == studentID && s.AssignmentID == assignmentID
	}))
}

// FindAnnouncementsByCourseID returns the newest first.
func (svc *Service) FindAnnouncementsByCourseID(courseID string) []Announcement {
	anns := filter(svc.store.snapshot().announcements, func(a Announcement) bool { return a.CourseID == courseID })
	sort.SliceStable(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns
}

// FindPostsByCourseID returns the newest first.
func (svc *Service) FindPostsByCourseID(courseID string) []DiscussionPost {
	posts := filter(svc.store.snapshot().discussionPosts, func(p DiscussionPost) bool { return p.CourseID == courseID })
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

// FindMaterialsByCourseID returns the newest first.
func (svc *Service) FindMaterialsByCourseID(courseID string) []Material {
	mats := filter(svc.store.snapshot().materials, func(m Material) bool { return m.CourseID == courseID })
	sort.SliceStable(mats, func(i, j int) bool { return mats[i].UploadedAt.After(mats[j].UploadedAt) })
	return mats
}

// FindVideoMaterialsByCourseID returns the newest first.
func (svc *Service) FindVideoMaterialsByCourseID(courseID string) []VideoMaterial {
	videos := filter(svc.store.snapshot().videoMaterials, func(v VideoMaterial) bool { return v.CourseID == courseID })
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].UploadedAt.After(videos[j].UploadedAt) })
	return videos
}

func (svc *Service) FindVideoMaterialByID(id string) (VideoMaterial, error) {
	videos := svc.store.snapshot().videoMaterials
	if i, ok := indexOf(videos, func(v VideoMaterial) bool { return v.ID == id }); ok {
		return videos[i], nil
	}
	return VideoMaterial{}, ErrNotFound
}

// FindNotificationsByUserID returns the newest first.
func (svc *Service) FindNotificationsByUserID(userID string) []Notification {
	ns := filter(svc.store.snapshot().notifications, func(n Notification) bool { return n.UserID == userID })
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })
	return ns
}

func (svc *Service) UnreadNotificationCount(userID string) int {
	var count int
	for _, n := range svc.store.snapshot().notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count
}

func (svc *Service) FindGroupsByCourseID(courseID string) []Group {
	return cloneEach(filter(svc.store.snapshot().groups, func(g Group) bool { return g.CourseID == courseID }))
}

func (svc *Service) FindQuizzesByCourseID(courseID string) []Quiz {
	return cloneEach(filter(svc.store.snapshot().quizzes, func(q Quiz) bool { return q.CourseID == courseID }))
}

func (svc *Service) FindQuizAttemptsByQuizID(quizID string) []QuizAttempt {
	return cloneEach(filter(svc.store.snapshot().quizAttempts, func(a QuizAttempt) bool { return a.QuizID == quizID }))
}

// FindQuizAttemptByStudent returns the first attempt of the student at the quiz.
func (svc *Service) FindQuizAttemptByStudent(quizID, studentID string) (QuizAttempt, bool) {
	a, ok := findQuizAttempt(svc.store.snapshot().quizAttempts, quizID, studentID)
	return a.clone(), ok
}

// FindChatMessagesByGroupID returns the oldest first.
func (svc *Service) FindChatMessagesByGroupID(groupID string) []ChatMessage {
	msgs := filter(svc.store.snapshot().chatMessages, func(m ChatMessage) bool { return m.GroupID == groupID })
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs
}

func (svc *Service) FindAttendanceByCourseForDate(courseID, date string) []AttendanceRecord {
	return filter(svc.store.snapshot().attendanceRecords, func(r AttendanceRecord) bool {
		return r.CourseID == courseID && r.Date == date
	})
}

// FindAttendanceByCourseAndStudent returns the newest date first.
func (svc *Service) FindAttendanceByCourseAndStudent(courseID, studentID string) []AttendanceRecord {
	recs := filter(svc.store.snapshot().attendanceRecords, func(r AttendanceRecord) bool {
		return r.CourseID == courseID && r.StudentID == studentID
	})
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date > recs[j].Date })
	return recs
}

// FindFeesByStudentID returns the latest due date first.
func (svc *Service) FindFeesByStudentID(studentID string) []Fee {
	fees := cloneEach(filter(svc.store.snapshot().fees, func(f Fee) bool { return f.StudentID == studentID }))
	sort.SliceStable(fees, func(i, j int) bool { return fees[i].DueDate > fees[j].DueDate })
	return fees
}

func (svc *Service) FindFeesByCourseID(courseID string) []Fee {
	return cloneEach(filter(svc.store.snapshot().fees, func(f Fee) bool { return f.CourseID == courseID }))
}

// FindVideoNotesByVideoIDAndStudentID returns notes in playback order.
func (svc *Service) FindVideoNotesByVideoIDAndStudentID(videoID, studentID string) []VideoNote {
	notes := filter(svc.store.snapshot().videoNotes, func(n VideoNote) bool {
		return n.VideoID == videoID && n.StudentID == studentID
	})
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Timestamp < notes[j].Timestamp })
	return notes
}
