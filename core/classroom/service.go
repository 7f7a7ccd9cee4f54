package classroom

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("record not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrAlreadyInGroup     = errors.New("already a member of a group in this course")
	ErrQuizAlreadyTaken   = errors.New("quiz already taken")
	ErrFeeAlreadyPaid     = errors.New("fee already paid")
	ErrPaymentPending     = errors.New("payment is not settled yet")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrPastDue            = errors.New("the due date has passed")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrNoFileStore        = errors.New("file storage is not configured")
	ErrNoGenerator        = errors.New("content generator is not configured")
)

type (
	// ContentGenerator produces generated text for teachers and about course videos.
	ContentGenerator interface {
		GenerateCourseDescription(ctx context.Context, courseTitle string) (string, error)
		GenerateAssignmentFeedback(ctx context.Context, assignmentTitle, submission string) (string, error)
		GenerateQuizQuestions(ctx context.Context, material string) ([]Question, error)
		GenerateVideoTranscript(ctx context.Context, videoTitle string) (string, error)
		AnswerVideoQuestion(ctx context.Context, transcript, question string) (string, error)
	}

	// FileStore turns uploaded blobs into URLs valid for the session.
	// Put returns the URL and the content type, sniffed when the file carries none.
	FileStore interface {
		Put(f File) (url, contentType string, err error)
		Release(url string)
	}

	// Receipt is what a gateway knows about a payment.
	Receipt struct {
		Reference   string
		Settled     bool   // the money was received
		RedirectURL string // where the payer completes an unsettled payment
	}

	// PaymentGateway charges fees. A charge may settle later; Confirm asks the provider again.
	// Confirm returns ErrPaymentFailed once the payment can no longer settle.
	PaymentGateway interface {
		Charge(ctx context.Context, fee Fee, method PaymentMethod) (Receipt, error)
		Confirm(ctx context.Context, reference string) (Receipt, error)
	}

	Deps struct {
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Files      FileStore
		Generator  ContentGenerator
		Payments   PaymentGateway
		Mailer     core.EmailService // optional, notifications are also e-mailed when set
	}

	Service struct {
		store      *Store
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator
		files      FileStore
		generator  ContentGenerator
		payments   PaymentGateway
		mailer     core.EmailService
	}
)

func NewService(store *Store, deps Deps) *Service {
	validate, translator := deps.Validate, deps.Translator
	if validate == nil {
		validate, translator = core.NewValidator()
		user.InitValidators(validate, translator)
	}
	logger := deps.Logger
	if logger == nil {
		logger = store.logger
	}
	return &Service{
		store:      store,
		logger:     logger,
		validate:   validate,
		translator: translator,
		files:      deps.Files,
		generator:  deps.Generator,
		payments:   deps.Payments,
		mailer:     deps.Mailer,
	}
}

// Store returns the underlying entity store.
func (svc *Service) Store() *Store { return svc.store }

// FieldErrors turns a validation error into inline field messages.
func (svc *Service) FieldErrors(err error) []core.FieldError {
	return core.FieldErrors(err, svc.translator)
}

// write commits `fn` and e-mails the notifications it created.
func (svc *Service) write(fn func(t *tx) error) error {
	var created []Notification
	err := svc.store.write(func(t *tx) error {
		if err := fn(t); err != nil {
			return err
		}
		created = t.created
		return nil
	})
	if err != nil {
		return err
	}
	svc.mailNotifications(created)
	return nil
}

// authorize returns the current user if they hold one of `roles` (any role when none is given).
func authorize(st *state, roles ...user.Role) (user.User, error) {
	if st.currentUser == nil {
		return user.User{}, ErrPermissionDenied
	}
	me := *st.currentUser
	if len(roles) == 0 {
		return me, nil
	}
	for _, role := range roles {
		if me.Role == role {
			return me, nil
		}
	}
	return user.User{}, ErrPermissionDenied
}

// notify creates one unread notification per user.
func (t *tx) notify(userIDs []string, message, link string) {
	if len(userIDs) == 0 {
		return
	}
	ns := make([]Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		ns = append(ns, Notification{
			ID:        newID("notif"),
			UserID:    uid,
			Message:   message,
			Link:      link,
			CreatedAt: now(),
		})
	}
	t.notifications = appendTo(t.notifications, ns...)
	t.created = append(t.created, ns...)
	t.touch(KeyNotifications)
}

func (svc *Service) mailNotifications(ns []Notification) {
	if svc.mailer == nil || len(ns) == 0 {
		return
	}
	st := svc.store.snapshot()
	msgs := make([]*core.EmailMessage, 0, len(ns))
	for _, n := range ns {
		usr, ok := findUser(st.users, n.UserID)
		if !ok || usr.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: "New notification",
			BodyStr: fmt.Sprintf("%s\n\n%s", n.Message, n.Link),
		})
	}
	svc.mailer.SendMessages(msgs...)
}

func findUser(users []user.User, id string) (user.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return user.User{}, false
}

func findCourse(courses []Course, id string) (Course, int, bool) {
	for i, c := range courses {
		if c.ID == id {
			return c, i, true
		}
	}
	return Course{}, -1, false
}
