package stack

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// NewFromWIT creates a stack of at most maxCount values of the WIT type t.
func NewFromWIT(t wit.Type, maxCount int, cfg *rawbuf.Config) (*Stack, error) {
	s := &Stack{}
	if err := s.CreateFromWIT(t, maxCount, cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateFromWIT initializes s with the Canonical ABI layout of t.
func (s *Stack) CreateFromWIT(t wit.Type, maxCount int, cfg *rawbuf.Config) error {
	if s == nil {
		Logger().Error("create on nil stack")
		return errors.InvalidArgument(container, "CreateFromWIT", "stack is nil")
	}
	info := layout.NewCalculator().FromWIT(t)
	return s.CreateWithConfig(info.Size, info.Align, maxCount, cfg)
}
