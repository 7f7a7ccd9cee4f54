package classroom

import (
	"time"
)

type (
	QuestionType     string
	AttendanceStatus string
	FeeStatus        string
	PaymentMethod    string
)

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"

	Present AttendanceStatus = "Present"
	Absent  AttendanceStatus = "Absent"
	Late    AttendanceStatus = "Late"

	FeeUnpaid  FeeStatus = "Unpaid"
	FeePaid    FeeStatus = "Paid"
	FeeOverdue FeeStatus = "Overdue"

	PayByCard      PaymentMethod = "Card"
	PayByGooglePay PaymentMethod = "Google Pay"
	PayByPhonePe   PaymentMethod = "PhonePe"
	PayByPaytm     PaymentMethod = "Paytm"
)

type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	EndDate     string   `json:"end_date"`   // YYYY-MM-DD
	TeacherID   string   `json:"teacher_id"`
	StudentIDs  []string `json:"student_ids"`
}

func (c Course) HasStudent(studentID string) bool {
	return contains(c.StudentIDs, studentID)
}

type Assignment struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

// PastDue reports whether `at` is later than the last second of the due day (UTC).
func (a Assignment) PastDue(at time.Time) bool {
	y, m, d := a.DueDate.UTC().Date()
	return at.After(time.Date(y, m, d, 23, 59, 59, 0, time.UTC))
}

type Submission struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignment_id"`
	StudentID    string     `json:"student_id"`
	Content      string     `json:"content"`
	FileURL      string     `json:"file_url,omitempty"`
	FileName     string     `json:"file_name,omitempty"`
	FileType     string     `json:"file_type,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	Grade        *float64   `json:"grade"`
	Feedback     *string    `json:"feedback"`
	GradedAt     *time.Time `json:"graded_at"`
}

func (s Submission) IsGraded() bool { return s.Grade != nil }

type Announcement struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type DiscussionPost struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ParentID  string    `json:"parent_id,omitempty"`
}

type Material struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type VideoMaterial struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
	Transcript string    `json:"transcript"`
}

type VideoNote struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	StudentID string    `json:"student_id"`
	Content   string    `json:"content"`
	Timestamp float64   `json:"timestamp"` // seconds into the video
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID          string   `json:"id"`
	CourseID    string   `json:"course_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"member_ids"`
}

func (g Group) HasMember(userID string) bool {
	return contains(g.MemberIDs, userID)
}

type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text" validate:"required,notblank"`
	Type          QuestionType `json:"type" validate:"required,oneof=multiple-choice true-false"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer" validate:"required"`
}

type Quiz struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"course_id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type QuizAttempt struct {
	ID          string            `json:"id"`
	QuizID      string            `json:"quiz_id"`
	StudentID   string            `json:"student_id"`
	Answers     map[string]string `json:"answers"` // {questionID: answer}
	Score       float64           `json:"score"`   // percentage
	SubmittedAt time.Time         `json:"submitted_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type AttendanceRecord struct {
	ID        string           `json:"id"`
	CourseID  string           `json:"course_id"`
	StudentID string           `json:"student_id"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Status    AttendanceStatus `json:"status"`
}

type Fee struct {
	ID               string        `json:"id"`
	StudentID        string        `json:"student_id"`
	CourseID         string        `json:"course_id"`
	Description      string        `json:"description"`
	Amount           float64       `json:"amount"`
	DueDate          string        `json:"due_date"` // YYYY-MM-DD
	Status           FeeStatus     `json:"status"`
	PaymentDate      *time.Time    `json:"payment_date,omitempty"`
	PaymentMethod    PaymentMethod `json:"payment_method,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	PaymentURL       string        `json:"payment_url,omitempty"` // set while a payment awaits settlement
}

// AwaitingPayment reports whether a charge was started but has not settled.
func (f Fee) AwaitingPayment() bool {
	return f.Status != FeePaid && f.PaymentReference != ""
}

// File is an uploaded blob before it gets a URL.
type File struct {
	Name    string
	Type    string // MIME type; sniffed when empty
	Content []byte
}

// Inputs

type NewCourse struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type NewAssignment struct {
	CourseID    string    `json:"course_id" validate:"required"`
	Title       string    `json:"title" validate:"required,notblank"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

type NewSubmission struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	Content      string `json:"content"`
	File         *File  `json:"-"`
}

type NewAnnouncement struct {
	CourseID string `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required,notblank"`
	Content  string `json:"content" validate:"required,notblank"`
}

type NewDiscussionPost struct {
	CourseID string `json:"course_id" validate:"required"`
	Content  string `json:"content" validate:"required,notblank"`
	ParentID string `json:"parent_id"`
}

type NewGroup struct {
	CourseID    string `json:"course_id" validate:"required"`
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
}

type NewQuiz struct {
	CourseID  string     `json:"course_id" validate:"required"`
	Title     string     `json:"title" validate:"required,notblank"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=Present Absent Late"`
}

type NewFee struct {
	CourseID    string   `json:"course_id" validate:"required"`
	StudentIDs  []string `json:"student_ids" validate:"required,min=1"`
	Description string   `json:"description" validate:"required,notblank"`
	Amount      float64  `json:"amount" validate:"gt=0"`
	DueDate     string   `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type NewVideoNote struct {
	VideoID   string  `json:"video_id" validate:"required"`
	Content   string  `json:"content" validate:"required,notblank"`
	Timestamp float64 `json:"timestamp" validate:"gte=0"`
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
