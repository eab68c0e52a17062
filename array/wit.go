package array

import (
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// NewFromWIT creates an array of values of the WIT type t.
func NewFromWIT(t wit.Type, capacity int, cfg *rawbuf.Config) (*Array, error) {
	a := &Array{}
	if err := a.CreateFromWIT(t, capacity, cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateFromWIT initializes a for capacity values of the WIT type t, laid
// out by the Canonical ABI so guest code can read the elements in place.
// Fields of a record type are addressable through Field.
func (a *Array) CreateFromWIT(t wit.Type, capacity int, cfg *rawbuf.Config) error {
	if a == nil {
		Logger().Error("create on nil array")
		return errors.InvalidArgument(container, "CreateFromWIT", "array is nil")
	}
	info := layout.NewCalculator().FromWIT(t)
	if err := a.CreateWithConfig(info.Size, info.Align, capacity, cfg); err != nil {
		return err
	}
	if len(info.Fields) > 0 {
		a.record = &info
	}
	return nil
}

// Fields returns the record fields of the element type, or nil when the
// array was not created from a WIT record.
func (a *Array) Fields() []layout.Field {
	if a == nil || a.record == nil {
		return nil
	}
	return append([]layout.Field(nil), a.record.Fields...)
}

// Field returns a view of the named record field of element i. The view is
// valid until the next mutating call on a.
func (a *Array) Field(i int, name string) ([]byte, error) {
	ref, err := a.ref("Field", i)
	if err != nil {
		return nil, err
	}
	if a.record == nil {
		Logger().Warn("field access on array without record layout", zap.String("field", name))
		return nil, errors.InvalidArgument(container, "Field", "element type is not a WIT record")
	}
	f, ok := a.record.Field(name)
	if !ok {
		return nil, errors.New(container, errors.KindInvalidArgument).
			Op("Field").
			Value(name).
			Detail("no field %q in record", name).
			Build()
	}
	return ref[f.Offset : f.Offset+f.Size : f.Offset+f.Size], nil
}
