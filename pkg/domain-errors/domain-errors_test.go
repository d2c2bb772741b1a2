package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: these are the error primitives used at every layer boundary.
// Unit tests ensure invariants like "wrapped domain errors preserve original code"
// and "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "identity not found"}
		s.Equal("identity not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeInvalidTransition}
		s.Equal("invalid_transition", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("store write failed")
		err := &Error{Code: CodeInternal, Message: "service error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeConflict, Message: "counter contention"}
		err2 := &Error{Code: CodeConflict, Message: "job already printed"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := &Error{Code: CodeConflict}
		s.False(err1.Is(err2))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	inner := New(CodeInvalidTransition, "job is terminal")
	wrapped := Wrap(inner, CodeInternal, "transition rejected")

	s.True(HasCode(wrapped, CodeInvalidTransition))
	s.False(HasCode(wrapped, CodeInternal))
	s.True(errors.Is(wrapped, inner))
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("plain errors have no code", func() {
		s.False(HasCode(errors.New("boom"), CodeInternal))
	})

	s.Run("nil error has no code", func() {
		s.False(HasCode(nil, CodeNotFound))
	})
}
