package main

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/alloc"
	"github.com/wippyai/rawbuf/array"
	"github.com/wippyai/rawbuf/layout"
	"github.com/wippyai/rawbuf/stack"
	"github.com/wippyai/rawbuf/text"
)

// SessionConfig selects and tunes the allocator behind a session.
type SessionConfig struct {
	// Allocator is one of heap, mmap, arena or linear.
	Allocator string
	// HeapLimit caps live heap bytes. 0 means unlimited.
	HeapLimit uintptr
	// ArenaChunk is the arena chunk size in bytes.
	ArenaChunk int
	// Pages is the linear memory size in 64 KiB pages.
	Pages uint32
}

// Session drives one array, one stack and one text through text commands.
type Session struct {
	name  string
	alloc rawbuf.Allocator
	lin   *alloc.Linear
	arena *alloc.Arena
	cfg   *rawbuf.Config

	arr array.Array
	stk stack.Stack
	txt *text.Text
}

// NewSession creates a session on the configured allocator.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	s := &Session{name: cfg.Allocator}
	switch cfg.Allocator {
	case "", "heap":
		s.name = "heap"
		s.alloc = alloc.NewHeap(cfg.HeapLimit)
	case "mmap":
		s.alloc = alloc.NewMmap()
	case "arena":
		s.arena = alloc.NewArena(cfg.ArenaChunk)
		s.alloc = s.arena
	case "linear":
		lin, err := alloc.NewLinear(ctx, &alloc.LinearConfig{Pages: cfg.Pages, Name: "bufctl"})
		if err != nil {
			return nil, fmt.Errorf("create linear memory: %w", err)
		}
		s.lin = lin
		s.alloc = lin
	default:
		return nil, fmt.Errorf("unknown allocator %q (want heap, mmap, arena or linear)", cfg.Allocator)
	}
	s.cfg = &rawbuf.Config{Allocator: s.alloc}
	s.txt = text.New(s.cfg)
	return s, nil
}

// Close destroys the containers and releases the allocator.
func (s *Session) Close(ctx context.Context) error {
	s.arr.Destroy()
	s.stk.Destroy()
	s.txt.Destroy()
	if s.arena != nil {
		s.arena.Release()
	}
	if s.lin != nil {
		return s.lin.Close(ctx)
	}
	return nil
}

// Exec runs one command line and returns its output.
func (s *Session) Exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	args, err := splitArgs(line)
	if err != nil {
		return "", err
	}

	switch args[0] {
	case "array":
		return s.execArray(args[1:])
	case "stack":
		return s.execStack(args[1:])
	case "text":
		return s.execText(args[1:])
	case "stats":
		return s.stats(), nil
	case "help":
		return helpText, nil
	default:
		return "", fmt.Errorf("unknown command %q (try help)", args[0])
	}
}

// State summarizes all three containers on one line each.
func (s *Session) State() string {
	var b strings.Builder
	if s.arr.Created() {
		st := s.arr.Stats()
		fmt.Fprintf(&b, "array  len=%d cap=%d elem=%d stride=%d\n", st.Len, st.Cap, st.ElemSize, st.Stride)
	} else {
		b.WriteString("array  (default)\n")
	}
	b.WriteString(s.stk.String())
	b.WriteString("\n")
	if s.txt.Created() {
		fmt.Fprintf(&b, "text   %q len=%d cap=%d", s.txt.String(), s.txt.Len(), s.txt.Cap())
	} else {
		b.WriteString("text   (default)")
	}
	return b.String()
}

const helpText = `array create <elem-size> <align> <capacity>
array create-wit <wit-type> <capacity> | fields | field <i> <name> [value]
array push <value> | get <i> | set <i> <value>
array reserve <n> | resize <n> | len | cap | stats | destroy
stack create <elem-size> <align> <max-count>
stack create-wit <wit-type> <max-count>
stack push <value> | pop | peek | discard | clear
stack reserve <n> | resize <n> | full | empty | len | cap | dump | destroy
text create "<s>" | set "<s>" | concat "<s>" | show
text substring <from> <to> | trim <left> <right> | int | equal "<s>"
text decode <charset> | encode <charset>
text reserve <n> | grow <n> | len | cap | destroy
stats
values are unsigned integers stored little-endian in elem-size bytes
wit types: bool u8..u64 s8..s64 f32 f64 char string record{a:u32,b:u8} tuple<u8,u64>`

func (s *Session) execArray(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("array: missing subcommand")
	}
	switch args[0] {
	case "create":
		n, err := ints(args[1:], 3)
		if err != nil {
			return "", err
		}
		size, align, err := elemLayout(n[0], n[1])
		if err != nil {
			return "", err
		}
		return "ok", s.arr.CreateWithConfig(size, align, n[2], s.cfg)
	case "create-wit":
		t, n, err := witArgs(args)
		if err != nil {
			return "", err
		}
		return "ok", s.arr.CreateFromWIT(t, n, s.cfg)
	case "fields":
		var b strings.Builder
		for i, f := range s.arr.Fields() {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s@%d:%d", f.Name, f.Offset, f.Size)
		}
		return b.String(), nil
	case "field":
		if len(args) != 3 && len(args) != 4 {
			return "", fmt.Errorf("field: expected <i> <name> [value]")
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("index: %w", err)
		}
		view, err := s.arr.Field(i, args[2])
		if err != nil {
			return "", err
		}
		if len(args) == 3 {
			return decode(view), nil
		}
		v, err := encode(args[3], uintptr(len(view)))
		if err != nil {
			return "", err
		}
		copy(view, v)
		return "ok", nil
	case "push":
		if err := arity(args, 2); err != nil {
			return "", err
		}
		elem, err := encode(args[1], s.arr.Stats().ElemSize)
		if err != nil {
			return "", err
		}
		return "ok", s.arr.Push(elem)
	case "get":
		n, err := ints(args[1:], 1)
		if err != nil {
			return "", err
		}
		elem, err := s.arr.Get(n[0])
		if err != nil {
			return "", err
		}
		return decode(elem), nil
	case "set":
		if err := arity(args, 3); err != nil {
			return "", err
		}
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("index: %w", err)
		}
		elem, err := encode(args[2], s.arr.Stats().ElemSize)
		if err != nil {
			return "", err
		}
		return "ok", s.arr.Set(i, elem)
	case "reserve", "resize":
		n, err := ints(args[1:], 1)
		if err != nil {
			return "", err
		}
		if args[0] == "reserve" {
			return "ok", s.arr.Reserve(n[0])
		}
		return "ok", s.arr.Resize(n[0])
	case "len":
		n, err := s.arr.Len()
		return strconv.Itoa(n), err
	case "cap":
		n, err := s.arr.Cap()
		return strconv.Itoa(n), err
	case "stats":
		st := s.arr.Stats()
		return fmt.Sprintf("len=%d cap=%d elem=%d align=%d stride=%d bytes=%d",
			st.Len, st.Cap, st.ElemSize, st.Align, st.Stride, st.Bytes), nil
	case "destroy":
		s.arr.Destroy()
		return "ok", nil
	default:
		return "", fmt.Errorf("array: unknown subcommand %q", args[0])
	}
}

func (s *Session) execStack(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("stack: missing subcommand")
	}
	switch args[0] {
	case "create":
		n, err := ints(args[1:], 3)
		if err != nil {
			return "", err
		}
		size, align, err := elemLayout(n[0], n[1])
		if err != nil {
			return "", err
		}
		return "ok", s.stk.CreateWithConfig(size, align, n[2], s.cfg)
	case "create-wit":
		t, n, err := witArgs(args)
		if err != nil {
			return "", err
		}
		return "ok", s.stk.CreateFromWIT(t, n, s.cfg)
	case "push":
		if err := arity(args, 2); err != nil {
			return "", err
		}
		elem, err := encode(args[1], s.stk.Stats().ElemSize)
		if err != nil {
			return "", err
		}
		return "ok", s.stk.Push(elem)
	case "pop":
		out := make([]byte, max(s.stk.Stats().ElemSize, 1))
		if err := s.stk.Pop(out); err != nil {
			return "", err
		}
		return decode(out), nil
	case "peek":
		ref, err := s.stk.PeekRef()
		if err != nil {
			return "", err
		}
		return decode(ref), nil
	case "discard":
		return "ok", s.stk.DiscardTop()
	case "clear":
		return "ok", s.stk.Clear()
	case "reserve", "resize":
		n, err := ints(args[1:], 1)
		if err != nil {
			return "", err
		}
		if args[0] == "reserve" {
			return "ok", s.stk.Reserve(n[0])
		}
		return "ok", s.stk.Resize(n[0])
	case "full":
		return strconv.FormatBool(s.stk.Full()), nil
	case "empty":
		return strconv.FormatBool(s.stk.Empty()), nil
	case "len":
		n, err := s.stk.Len()
		return strconv.Itoa(n), err
	case "cap":
		n, err := s.stk.Cap()
		return strconv.Itoa(n), err
	case "dump":
		s.stk.LogState()
		return s.stk.String(), nil
	case "destroy":
		s.stk.Destroy()
		return "ok", nil
	default:
		return "", fmt.Errorf("stack: unknown subcommand %q", args[0])
	}
}

func (s *Session) execText(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("text: missing subcommand")
	}
	switch args[0] {
	case "create", "set", "concat", "equal":
		if err := arity(args, 2); err != nil {
			return "", err
		}
		switch args[0] {
		case "create":
			return "ok", s.txt.CreateFrom(args[1])
		case "set":
			return "ok", s.txt.CopyFrom(args[1])
		case "concat":
			return "ok", s.txt.ConcatString(args[1])
		default:
			return strconv.FormatBool(s.txt.EqualString(args[1])), nil
		}
	case "show":
		return strconv.Quote(s.txt.String()), nil
	case "substring":
		n, err := ints(args[1:], 2)
		if err != nil {
			return "", err
		}
		src, err := s.snapshot()
		if err != nil {
			return "", err
		}
		defer src.Destroy()
		return "ok", s.txt.Substring(src, n[0], n[1])
	case "trim":
		if err := arity(args, 3); err != nil {
			return "", err
		}
		if len(args[1]) != 1 || len(args[2]) != 1 {
			return "", fmt.Errorf("text trim: expected single-byte characters")
		}
		src, err := s.snapshot()
		if err != nil {
			return "", err
		}
		defer src.Destroy()
		return "ok", s.txt.Trim(src, args[1][0], args[2][0])
	case "decode", "encode":
		if err := arity(args, 2); err != nil {
			return "", err
		}
		cs, err := text.Charset(args[1])
		if err != nil {
			return "", err
		}
		if args[0] == "decode" {
			return "ok", s.txt.Decode(s.txt, cs)
		}
		return "ok", s.txt.Encode(s.txt, cs)
	case "int":
		v, err := s.txt.ToInt32()
		return strconv.FormatInt(int64(v), 10), err
	case "reserve", "grow":
		n, err := ints(args[1:], 1)
		if err != nil {
			return "", err
		}
		if args[0] == "reserve" {
			return "ok", s.txt.Reserve(n[0])
		}
		return "ok", s.txt.Grow(n[0])
	case "len":
		return strconv.Itoa(s.txt.Len()), nil
	case "cap":
		return strconv.Itoa(s.txt.Cap()), nil
	case "destroy":
		s.txt.Destroy()
		return "ok", nil
	default:
		return "", fmt.Errorf("text: unknown subcommand %q", args[0])
	}
}

// snapshot copies the session text so it can be both source and destination.
func (s *Session) snapshot() (*text.Text, error) {
	src := text.New(s.cfg)
	if err := src.Copy(s.txt); err != nil {
		return nil, err
	}
	return src, nil
}

func (s *Session) stats() string {
	var b strings.Builder
	fmt.Fprintf(&b, "allocator %s", s.name)
	if r, ok := s.alloc.(rawbuf.StatsReporter); ok {
		st := r.Stats()
		fmt.Fprintf(&b, " allocs=%d frees=%d live=%d peak=%d", st.Allocs, st.Frees, st.LiveBytes, st.PeakBytes)
	}
	if s.arena != nil {
		m := s.arena.Metrics()
		fmt.Fprintf(&b, " chunks=%d in_use=%d capacity=%d", m.NumChunks, m.SizeInUse, m.Capacity)
	}
	if s.lin != nil {
		fmt.Fprintf(&b, " free=%d", s.lin.FreeBytes())
	}
	return b.String()
}

// maxElemSize bounds session elements, which are built in Go memory before
// they reach a container.
const maxElemSize = 4096

func elemLayout(size, align int) (uintptr, uintptr, error) {
	if size < 0 || align < 0 {
		return 0, 0, fmt.Errorf("element size and alignment must not be negative")
	}
	if size > maxElemSize {
		return 0, 0, fmt.Errorf("element size %d exceeds %d", size, maxElemSize)
	}
	return uintptr(size), uintptr(align), nil
}

// witArgs parses "<type> <count>" for the create-wit subcommands.
func witArgs(args []string) (wit.Type, int, error) {
	if err := arity(args, 3); err != nil {
		return nil, 0, err
	}
	t, err := parseWIT(args[1])
	if err != nil {
		return nil, 0, err
	}
	if size := layout.NewCalculator().FromWIT(t).Size; size > maxElemSize {
		return nil, 0, fmt.Errorf("element size %d exceeds %d", size, maxElemSize)
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	return t, n, nil
}

func arity(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", args[0], n-1, len(args)-1)
	}
	return nil
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d integer argument(s), got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// encode stores v little-endian in size bytes. A zero size (default-state
// container) yields a single byte so the container reports its own error.
func encode(v string, size uintptr) ([]byte, error) {
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("value %q: %w", v, err)
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], n)
	out := make([]byte, max(size, 1))
	copy(out, tmp[:])
	return out, nil
}

// decode renders up to 8 bytes as a little-endian integer and anything
// wider as hex.
func decode(b []byte) string {
	if len(b) > 8 {
		return "0x" + hex.EncodeToString(b)
	}
	var tmp [8]byte
	copy(tmp[:], b)
	return strconv.FormatUint(binary.LittleEndian.Uint64(tmp[:]), 10)
}

// splitArgs splits on spaces, honouring Go-style double-quoted strings.
func splitArgs(line string) ([]string, error) {
	var args []string
	for {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			return args, nil
		}
		if line[0] == '"' {
			q, err := strconv.QuotedPrefix(line)
			if err != nil {
				return nil, fmt.Errorf("bad quoted string: %w", err)
			}
			s, _ := strconv.Unquote(q)
			args = append(args, s)
			line = line[len(q):]
			continue
		}
		end := strings.IndexAny(line, " \t")
		if end < 0 {
			end = len(line)
		}
		args = append(args, line[:end])
		line = line[end:]
	}
}
