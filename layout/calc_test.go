package layout

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestFromWITPrimitives(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		typ   wit.Type
		name  string
		size  uintptr
		align uintptr
	}{
		{wit.Bool{}, "bool", 1, 1},
		{wit.U8{}, "u8", 1, 1},
		{wit.S16{}, "s16", 2, 2},
		{wit.U32{}, "u32", 4, 4},
		{wit.F32{}, "f32", 4, 4},
		{wit.U64{}, "u64", 8, 8},
		{wit.F64{}, "f64", 8, 8},
		{wit.Char{}, "char", 4, 4},
		{wit.String{}, "string", 8, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.FromWIT(tc.typ)
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
		})
	}
}

func TestFromWITRecord(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{}}}
		info := c.FromWIT(typedef)
		if info.Size != 0 {
			t.Errorf("size: got %d, want 0", info.Size)
		}
		if _, err := info.Stride(); err == nil {
			t.Error("empty record should not produce a usable stride")
		}
	})

	t.Run("mixed_alignment", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{
			Fields: []wit.Field{
				{Name: "a", Type: wit.U8{}},
				{Name: "b", Type: wit.U32{}},
				{Name: "c", Type: wit.U8{}},
			},
		}}
		info := c.FromWIT(typedef)

		want := []Field{
			{Name: "a", Offset: 0, Size: 1},
			{Name: "b", Offset: 4, Size: 4},
			{Name: "c", Offset: 8, Size: 1},
		}
		if len(info.Fields) != len(want) {
			t.Fatalf("got %d fields, want %d", len(info.Fields), len(want))
		}
		for i, w := range want {
			if info.Fields[i] != w {
				t.Errorf("field %d: got %+v, want %+v", i, info.Fields[i], w)
			}
			if f, ok := info.Field(w.Name); !ok || f != w {
				t.Errorf("Field(%q) = %+v, %v", w.Name, f, ok)
			}
		}
		if _, ok := info.Field("missing"); ok {
			t.Error("Field(missing) should not be found")
		}
		if info.Size != 12 || info.Align != 4 {
			t.Errorf("got size %d align %d, want 12/4", info.Size, info.Align)
		}
	})

	t.Run("cached", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{
			Fields: []wit.Field{{Name: "x", Type: wit.U64{}}},
		}}
		first := c.FromWIT(typedef)
		second := c.FromWIT(typedef)
		if first.Size != second.Size || len(c.cache) == 0 {
			t.Error("expected cached layout")
		}
	})
}

func TestFromWITTuple(t *testing.T) {
	c := NewCalculator()

	typedef := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U64{}, wit.U8{}}}}
	info := c.FromWIT(typedef)
	if info.Size != 24 || info.Align != 8 {
		t.Errorf("got size %d align %d, want 24/8", info.Size, info.Align)
	}
}

func TestFromWITTagged(t *testing.T) {
	c := NewCalculator()

	t.Run("option_u32", func(t *testing.T) {
		info := c.FromWIT(&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}})
		if info.Size != 8 || info.Align != 4 {
			t.Errorf("got size %d align %d, want 8/4", info.Size, info.Align)
		}
	})

	t.Run("result_unit_err", func(t *testing.T) {
		info := c.FromWIT(&wit.TypeDef{Kind: &wit.Result{Err: wit.U8{}}})
		if info.Size != 2 || info.Align != 1 {
			t.Errorf("got size %d align %d, want 2/1", info.Size, info.Align)
		}
	})

	t.Run("list", func(t *testing.T) {
		info := c.FromWIT(&wit.TypeDef{Kind: &wit.List{Type: wit.U64{}}})
		if info.Size != 8 || info.Align != 4 {
			t.Errorf("got size %d align %d, want 8/4", info.Size, info.Align)
		}
	})
}

func TestDiscriminantAndFlags(t *testing.T) {
	discs := []struct {
		cases int
		want  uintptr
	}{
		{1, 1}, {256, 1}, {257, 2}, {65536, 2}, {65537, 4},
	}
	for _, d := range discs {
		if got := discriminantSize(d.cases); got != d.want {
			t.Errorf("discriminantSize(%d) = %d, want %d", d.cases, got, d.want)
		}
	}

	fl := []struct {
		n    int
		size uintptr
	}{
		{0, 0}, {8, 1}, {9, 2}, {32, 4}, {64, 8}, {65, 12},
	}
	for _, f := range fl {
		if got := flags(f.n); got.Size != f.size {
			t.Errorf("flags(%d).Size = %d, want %d", f.n, got.Size, f.size)
		}
	}
}
