package text

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/wippyai/rawbuf/errors"
)

// Charset looks up a single-byte character set by name. Names are matched
// case-insensitively against the IANA-style names used by x/text, plus the
// short aliases latin1, cp1252 and cp437.
func Charset(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(name) {
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "latin9", "iso-8859-15":
		return charmap.ISO8859_15, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	case "cp437", "ibm437":
		return charmap.CodePage437, nil
	case "koi8-r":
		return charmap.KOI8R, nil
	}
	return nil, errors.New(container, errors.KindInvalidArgument).
		Op("Charset").
		Value(name).
		Detail("unknown charset").
		Build()
}

// Decode replaces t with the bytes of src, read as cs, converted to UTF-8.
func (t *Text) Decode(src *Text, cs *charmap.Charmap) error {
	if err := t.convertArgs("Decode", src, cs); err != nil {
		return err
	}
	out, err := cs.NewDecoder().Bytes(src.view())
	if err != nil {
		Logger().Error("charset decode failed", zap.Stringer("charset", cs), zap.Error(err))
		return errors.Wrap(container, "Decode", err, "decode "+cs.String())
	}
	return t.assign("Decode", out)
}

// Encode replaces t with the UTF-8 bytes of src converted to cs. Runes that
// cs cannot represent are an InvalidArgument error and leave t unchanged.
func (t *Text) Encode(src *Text, cs *charmap.Charmap) error {
	if err := t.convertArgs("Encode", src, cs); err != nil {
		return err
	}
	out, err := cs.NewEncoder().Bytes(src.view())
	if err != nil {
		Logger().Error("charset encode failed", zap.Stringer("charset", cs), zap.Error(err))
		return errors.New(container, errors.KindInvalidArgument).
			Op("Encode").
			Cause(err).
			Detail("content not representable in %s", cs).
			Build()
	}
	return t.assign("Encode", out)
}

func (t *Text) convertArgs(op string, src *Text, cs *charmap.Charmap) error {
	if err := t.checkDst(op); err != nil {
		return err
	}
	if err := checkSrc(op, src); err != nil {
		return err
	}
	if cs == nil {
		return errors.InvalidArgument(container, op, "nil charset")
	}
	return nil
}
