package layout

import (
	"go.bytecodealliance.org/wit"
)

// Calculator derives element layouts from WIT types using Canonical ABI rules,
// so a container can hold values in the exact form a WebAssembly guest reads.
// Results for type definitions are cached; a Calculator is not safe for
// concurrent use.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

// FromWIT returns the layout of t. Unknown types report Size 0, which Stride
// rejects.
func (c *Calculator) FromWIT(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.typeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) typeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info
	switch kind := t.Kind.(type) {
	case *wit.Record:
		fields := make([]wit.Type, len(kind.Fields))
		names := make([]string, len(kind.Fields))
		for i, f := range kind.Fields {
			fields[i] = f.Type
			names[i] = f.Name
		}
		info = c.sequence(fields, names)
	case *wit.Tuple:
		info = c.sequence(kind.Types, nil)
	case *wit.Variant:
		payloads := make([]wit.Type, 0, len(kind.Cases))
		for _, cs := range kind.Cases {
			payloads = append(payloads, cs.Type)
		}
		info = c.tagged(len(kind.Cases), payloads)
	case *wit.Enum:
		size := discriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case *wit.Option:
		info = c.tagged(2, []wit.Type{kind.Type})
	case *wit.Result:
		info = c.tagged(2, []wit.Type{kind.OK, kind.Err})
	case *wit.Flags:
		info = flags(len(kind.Flags))
	case wit.Type:
		info = c.FromWIT(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

// sequence lays out members one after another, each at its own alignment.
func (c *Calculator) sequence(members []wit.Type, names []string) Info {
	if len(members) == 0 {
		return Info{Size: 0, Align: 1}
	}

	var fields []Field
	if names != nil {
		fields = make([]Field, 0, len(names))
	}
	maxAlign := uintptr(1)
	offset := uintptr(0)

	for i, m := range members {
		ml := c.FromWIT(m)
		offset = AlignTo(offset, ml.Align)
		if names != nil {
			fields = append(fields, Field{Name: names[i], Offset: offset, Size: ml.Size})
		}
		maxAlign = max(maxAlign, ml.Align)
		offset += ml.Size
	}

	return Info{
		Size:   AlignTo(offset, maxAlign),
		Align:  maxAlign,
		Fields: fields,
	}
}

// tagged lays out a discriminant followed by the largest payload. nil
// payloads are unit cases.
func (c *Calculator) tagged(numCases int, payloads []wit.Type) Info {
	if numCases == 0 {
		return Info{Size: 0, Align: 1}
	}

	disc := discriminantSize(numCases)
	maxAlign := disc
	maxSize := uintptr(0)
	for _, p := range payloads {
		if p == nil {
			continue
		}
		pl := c.FromWIT(p)
		maxAlign = max(maxAlign, pl.Align)
		maxSize = max(maxSize, pl.Size)
	}

	payloadOffset := AlignTo(disc, maxAlign)
	return Info{
		Size:  AlignTo(payloadOffset+maxSize, maxAlign),
		Align: maxAlign,
	}
}

func discriminantSize(numCases int) uintptr {
	switch {
	case numCases <= 256:
		return 1
	case numCases <= 65536:
		return 2
	default:
		return 4
	}
}

func flags(n int) Info {
	switch {
	case n == 0:
		return Info{Size: 0, Align: 1}
	case n <= 8:
		return Info{Size: 1, Align: 1}
	case n <= 16:
		return Info{Size: 2, Align: 2}
	case n <= 32:
		return Info{Size: 4, Align: 4}
	case n <= 64:
		return Info{Size: 8, Align: 8}
	}
	// more than 64 flags are packed into u32 words
	return Info{Size: uintptr((n+31)/32) * 4, Align: 4}
}
