package classroom

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartlearn/core/user"
	logsvc "github.com/trezcool/smartlearn/services/logger"
	inmemdb "github.com/trezcool/smartlearn/storage/database/inmem"
)

const testPassword = "Ch4lk&Board"

var errGeneratorDown = errors.New("generator down")

type fakeFiles struct {
	mu       sync.Mutex
	next     int
	stored   map[string]File
	released []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{stored: make(map[string]File)}
}

func (f *fakeFiles) Put(file File) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	url := fmt.Sprintf("blob:test/%d", f.next)
	f.stored[url] = file
	ct := file.Type
	if ct == "" {
		ct = "application/octet-stream"
	}
	return url, ct, nil
}

func (f *fakeFiles) Release(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, url)
	f.released = append(f.released, url)
}

type fakeGenerator struct {
	fail bool
}

func (g fakeGenerator) GenerateCourseDescription(_ context.Context, title string) (string, error) {
	if g.fail {
		return "", errGeneratorDown
	}
	return "All about " + title + ".", nil
}

func (g fakeGenerator) GenerateAssignmentFeedback(_ context.Context, title, submission string) (string, error) {
	if g.fail {
		return "", errGeneratorDown
	}
	return fmt.Sprintf("%s: %q reads well.", title, submission), nil
}

// GenerateQuizQuestions returns one valid question of each type and one with too few options.
func (g fakeGenerator) GenerateQuizQuestions(_ context.Context, material string) ([]Question, error) {
	if g.fail {
		return nil, errGeneratorDown
	}
	return []Question{
		{Text: material + "?", Type: MultipleChoice, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
		{Text: material + " is hard.", Type: MultipleChoice, Options: []string{"yes", "no"}, CorrectAnswer: "no"},
		{Text: material + " is fun.", Type: TrueFalse, CorrectAnswer: "True"},
	}, nil
}

func (g fakeGenerator) GenerateVideoTranscript(_ context.Context, title string) (string, error) {
	if g.fail {
		return "", errGeneratorDown
	}
	return "Transcript of " + title, nil
}

func (g fakeGenerator) AnswerVideoQuestion(_ context.Context, transcript, question string) (string, error) {
	if g.fail {
		return "", errGeneratorDown
	}
	return "[00:30] " + question + " " + transcript, nil
}

// fakePayments settles charges at once unless deferred is set.
// Deferred charges settle when their reference is added to settled, or fail when added to failed.
type fakePayments struct {
	err      error
	deferred bool
	charged  []string
	settled  map[string]bool
	failed   map[string]bool
}

func (p *fakePayments) Charge(_ context.Context, fee Fee, _ PaymentMethod) (Receipt, error) {
	if p.err != nil {
		return Receipt{}, p.err
	}
	p.charged = append(p.charged, fee.ID)
	ref := fmt.Sprintf("ref-%s-%d", fee.ID, len(p.charged))
	if p.deferred {
		return Receipt{Reference: ref, RedirectURL: "https://pay.test/" + ref}, nil
	}
	return Receipt{Reference: ref, Settled: true}, nil
}

func (p *fakePayments) Confirm(_ context.Context, ref string) (Receipt, error) {
	if p.failed[ref] {
		return Receipt{Reference: ref}, ErrPaymentFailed
	}
	return Receipt{Reference: ref, Settled: p.settled[ref]}, nil
}

// tickClock makes every now() call one second later than the previous one.
func tickClock(t *testing.T) {
	t.Helper()
	var (
		mu  sync.Mutex
		cur = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	)
	orig := NowFunc
	NowFunc = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
	t.Cleanup(func() { NowFunc = orig })
}

type testEnv struct {
	svc      *Service
	kv       *inmemdb.DB
	files    *fakeFiles
	payments *fakePayments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tickClock(t)
	kv := inmemdb.Open()
	store, err := Open(context.Background(), kv, logsvc.NewNopLogger())
	require.NoError(t, err)

	env := &testEnv{kv: kv, files: newFakeFiles(), payments: &fakePayments{}}
	env.svc = NewService(store, Deps{
		Files:     env.files,
		Generator: fakeGenerator{},
		Payments:  env.payments,
	})
	return env
}

// register signs up a user, leaving them signed in.
func (env *testEnv) register(t *testing.T, name, email string, role user.Role) user.User {
	t.Helper()
	usr, err := env.svc.Register(user.NewUser{
		Name:            name,
		Email:           email,
		Password:        testPassword,
		PasswordConfirm: testPassword,
		Role:            role,
	})
	require.NoError(t, err)
	return usr
}

func (env *testEnv) login(t *testing.T, usr user.User) {
	t.Helper()
	_, err := env.svc.Login(usr.Email, testPassword)
	require.NoError(t, err)
}

// classroomFixture is a teacher with one course and two enrolled students.
type classroomFixture struct {
	teacher, ada, bob user.User
	course            Course
}

func (env *testEnv) seed(t *testing.T) classroomFixture {
	t.Helper()
	var fx classroomFixture
	fx.ada = env.register(t, "Ada Student", "ada@smartlearn.test", user.RoleStudent)
	fx.bob = env.register(t, "Bob Student", "bob@smartlearn.test", user.RoleStudent)
	fx.teacher = env.register(t, "Ms Frizzle", "frizzle@smartlearn.test", user.RoleTeacher)

	course, err := env.svc.CreateCourse(NewCourse{Title: "Algebra I", StartDate: "2024-01-08", EndDate: "2024-06-28"})
	require.NoError(t, err)

	for _, s := range []user.User{fx.ada, fx.bob} {
		env.login(t, s)
		require.NoError(t, env.svc.EnrollInCourse(course.ID))
	}
	fx.course, err = env.svc.FindCourseByID(course.ID)
	require.NoError(t, err)
	env.login(t, fx.teacher)
	return fx
}
