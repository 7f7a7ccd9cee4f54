package classroom

import (
	"time"

	"github.com/trezcool/smartlearn/core/user"
)

// Records handed out of the store are deep copies: mutating one never reaches the stored state.

type cloner[T any] interface {
	clone() T
}

func cloneEach[T cloner[T]](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = v.clone()
	}
	return out
}

func cloneUsers(users []user.User) []user.User {
	out := make([]user.User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (c Course) clone() Course {
	c.StudentIDs = cloneStrings(c.StudentIDs)
	return c
}

func (g Group) clone() Group {
	g.MemberIDs = cloneStrings(g.MemberIDs)
	return g
}

func (q Question) clone() Question {
	q.Options = cloneStrings(q.Options)
	return q
}

func (q Quiz) clone() Quiz {
	if q.Questions != nil {
		q.Questions = cloneEach(q.Questions)
	}
	return q
}

func (a QuizAttempt) clone() QuizAttempt {
	if a.Answers != nil {
		answers := make(map[string]string, len(a.Answers))
		for k, v := range a.Answers {
			answers[k] = v
		}
		a.Answers = answers
	}
	return a
}

func (s Submission) clone() Submission {
	s.Grade = clonePtr(s.Grade)
	s.Feedback = clonePtr(s.Feedback)
	s.GradedAt = clonePtr[time.Time](s.GradedAt)
	return s
}

func (f Fee) clone() Fee {
	f.PaymentDate = clonePtr(f.PaymentDate)
	return f
}
