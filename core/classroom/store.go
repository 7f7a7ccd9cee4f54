package classroom

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

// Persisted collection keys.
const (
	KeyUsers             = "users"
	KeyCourses           = "courses"
	KeyAssignments       = "assignments"
	KeySubmissions       = "submissions"
	KeyAnnouncements     = "announcements"
	KeyDiscussionPosts   = "discussionPosts"
	KeyMaterials         = "materials"
	KeyVideoMaterials    = "videoMaterials"
	KeyVideoNotes        = "videoNotes"
	KeyNotifications     = "notifications"
	KeyGroups            = "groups"
	KeyQuizzes           = "quizzes"
	KeyQuizAttempts      = "quizAttempts"
	KeyChatMessages      = "chatMessages"
	KeyAttendanceRecords = "attendanceRecords"
	KeyFees              = "fees"
	KeyCurrentUser       = "currentUser"
)

// CollectionKeys lists every persisted key in load order.
var CollectionKeys = []string{
	KeyUsers, KeyCourses, KeyAssignments, KeySubmissions, KeyAnnouncements, KeyDiscussionPosts,
	KeyMaterials, KeyVideoMaterials, KeyVideoNotes, KeyNotifications, KeyGroups, KeyQuizzes,
	KeyQuizAttempts, KeyChatMessages, KeyAttendanceRecords, KeyFees, KeyCurrentUser,
}

// SaveFailedMessage is surfaced once when the persistence backend stops accepting writes.
const SaveFailedMessage = "Could not save data. Your storage might be full."

// state is one immutable snapshot of every collection.
// Slices are never modified in place; a change builds a new slice and swaps it in.
type state struct {
	users             []user.User
	courses           []Course
	assignments       []Assignment
	submissions       []Submission
	announcements     []Announcement
	discussionPosts   []DiscussionPost
	materials         []Material
	videoMaterials    []VideoMaterial
	videoNotes        []VideoNote
	notifications     []Notification
	groups            []Group
	quizzes           []Quiz
	quizAttempts      []QuizAttempt
	chatMessages      []ChatMessage
	attendanceRecords []AttendanceRecord
	fees              []Fee
	currentUser       *user.User
}

// field returns a pointer to the collection stored under `key`.
func (st *state) field(key string) interface{} {
	switch key {
	case KeyUsers:
		return &st.users
	case KeyCourses:
		return &st.courses
	case KeyAssignments:
		return &st.assignments
	case KeySubmissions:
		return &st.submissions
	case KeyAnnouncements:
		return &st.announcements
	case KeyDiscussionPosts:
		return &st.discussionPosts
	case KeyMaterials:
		return &st.materials
	case KeyVideoMaterials:
		return &st.videoMaterials
	case KeyVideoNotes:
		return &st.videoNotes
	case KeyNotifications:
		return &st.notifications
	case KeyGroups:
		return &st.groups
	case KeyQuizzes:
		return &st.quizzes
	case KeyQuizAttempts:
		return &st.quizAttempts
	case KeyChatMessages:
		return &st.chatMessages
	case KeyAttendanceRecords:
		return &st.attendanceRecords
	case KeyFees:
		return &st.fees
	case KeyCurrentUser:
		return &st.currentUser
	}
	panic(fmt.Sprintf("classroom: unknown collection %q", key))
}

// decode replaces the collection under `key` with `data`, leaving it untouched on error.
func (st *state) decode(key string, data []byte) error {
	dst := reflect.ValueOf(st.field(key)).Elem()
	v := reflect.New(dst.Type())
	if err := json.Unmarshal(data, v.Interface()); err != nil {
		return err
	}
	dst.Set(v.Elem())
	return nil
}

// tx is the private copy a mutation works on.
type tx struct {
	state
	dirty   map[string]bool
	created []Notification
}

// touch marks collections as replaced.
func (t *tx) touch(keys ...string) {
	for _, key := range keys {
		t.dirty[key] = true
	}
}

// Store holds all entity collections and writes them through to a core.KVStore.
type Store struct {
	kv     core.KVStore
	logger core.Logger

	mu       sync.RWMutex
	st       state
	versions map[string]uint64
	failing  bool // a save failed and none succeeded since
	onAlert  func(err error)
}

// Open loads every collection from `kv`.
// Missing or corrupt values fall back to empty collections with a warning.
func Open(ctx context.Context, kv core.KVStore, logger core.Logger) (*Store, error) {
	s := &Store{
		kv:       kv,
		logger:   logger,
		versions: make(map[string]uint64, len(CollectionKeys)),
	}
	s.onAlert = func(err error) { s.logger.Warn(SaveFailedMessage, err) }

	for _, key := range CollectionKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := kv.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, core.ErrKeyNotFound) {
				logger.Warn(fmt.Sprintf("loading %q from storage, using default", key), err)
			}
			continue
		}
		if err := s.st.decode(key, data); err != nil {
			logger.Warn(fmt.Sprintf("parsing %q from storage, using default", key), err)
		}
	}

	// the current user is one of the users; the users collection wins if the saved copies disagree
	if cu := s.st.currentUser; cu != nil {
		s.st.currentUser = nil
		if usr, ok := findUser(s.st.users, cu.ID); ok {
			s.st.currentUser = &usr
		}
	}
	return s, nil
}

// OnAlert replaces the handler called when saving starts failing.
// It runs once per failure streak and is reset by the next successful save.
func (s *Store) OnAlert(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAlert = fn
}

// Version returns how many times the collection under `key` has been replaced.
func (s *Store) Version(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[key]
}

// Flush saves every collection.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	var firstErr, alert error
	for _, key := range CollectionKeys {
		first, err := s.save(ctx, key)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if first {
			alert = err
		}
	}
	onAlert := s.onAlert
	s.mu.Unlock()

	raise(onAlert, alert)
	return firstErr
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

// write runs `fn` on a private copy of the state.
// Every collection `fn` touched is published and saved together, or none if `fn` fails.
// The alert handler runs after the lock is released, so it may call back into the store.
func (s *Store) write(fn func(t *tx) error) error {
	s.mu.Lock()
	t := &tx{state: s.st, dirty: make(map[string]bool)}
	if err := fn(t); err != nil {
		s.mu.Unlock()
		return err
	}
	s.st = t.state
	var alert error
	for _, key := range CollectionKeys {
		if t.dirty[key] {
			s.versions[key]++
			if first, err := s.save(context.Background(), key); first {
				alert = err
			}
		}
	}
	onAlert := s.onAlert
	s.mu.Unlock()

	raise(onAlert, alert)
	return nil
}

// save is best-effort: failures are logged, the in-memory state stays authoritative.
// first reports whether this failure starts a failure streak. Callers hold s.mu.
func (s *Store) save(ctx context.Context, key string) (first bool, err error) {
	data, err := json.Marshal(s.st.field(key))
	if err == nil {
		err = s.kv.Set(ctx, key, data)
	}
	if err != nil {
		err = errors.Wrapf(err, "saving %q", key)
		s.logger.Error(err.Error(), err)
		first = !s.failing
		s.failing = true
		return first, err
	}
	s.failing = false
	return false, nil
}

func raise(onAlert func(err error), alert error) {
	if alert != nil && onAlert != nil {
		onAlert(alert)
	}
}

// copy-on-write helpers

func appendTo[T any](s []T, v ...T) []T {
	out := make([]T, 0, len(s)+len(v))
	out = append(out, s...)
	return append(out, v...)
}

func replaceAt[T any](s []T, i int, v T) []T {
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out
}

func filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
