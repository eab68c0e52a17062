package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/rawbuf/alloc"
	"github.com/wippyai/rawbuf/array"
	"github.com/wippyai/rawbuf/stack"
	"github.com/wippyai/rawbuf/text"
)

func main() {
	var (
		script      = flag.String("script", "", "Path to command script (default stdin)")
		allocName   = flag.String("alloc", "heap", "Allocator: heap, mmap, arena, linear")
		heapLimit   = flag.Uint64("limit", 0, "Heap live byte limit (0 = unlimited)")
		chunkSize   = flag.Int("chunk", alloc.DefaultChunkSize, "Arena chunk size in bytes")
		pages       = flag.Uint("pages", 16, "Linear memory size in 64 KiB pages")
		logLevel    = flag.String("log-level", "", "Diagnostics level: debug, info, warn, error (default off)")
		keepGoing   = flag.Bool("k", false, "Keep going after a failing command")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *pages > alloc.MaxPages {
		fmt.Fprintf(os.Stderr, "Usage: -pages must be at most %d\n", alloc.MaxPages)
		os.Exit(1)
	}

	cfg := SessionConfig{
		Allocator:  *allocName,
		HeapLimit:  uintptr(*heapLimit),
		ArenaChunk: *chunkSize,
		Pages:      uint32(*pages),
	}

	logger, err := newLogger(*logLevel, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	installLogger(logger)

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *script, *keepGoing); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg SessionConfig, script string, keepGoing bool) error {
	ctx := context.Background()

	in := io.Reader(os.Stdin)
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	sess, err := NewSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(ctx) }()

	return execAll(sess, in, os.Stdout, keepGoing)
}

// execAll runs every line of in and echoes results to out. The first failing
// command stops execution unless keepGoing is set.
func execAll(sess *Session, in io.Reader, out io.Writer, keepGoing bool) error {
	var failed int
	sc := bufio.NewScanner(in)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		res, err := sess.Exec(line)
		if err != nil {
			if !keepGoing {
				return fmt.Errorf("line %d: %s: %w", lineNo, strings.TrimSpace(line), err)
			}
			fmt.Fprintf(out, "line %d: error: %v\n", lineNo, err)
			failed++
			continue
		}
		if res != "" {
			fmt.Fprintln(out, res)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d command(s) failed", failed)
	}
	return nil
}

// newLogger builds a colored console logger at the given level. An empty
// level disables diagnostics. In interactive mode the TUI owns the terminal,
// so diagnostics are dropped.
func newLogger(level string, interactive bool) (*zap.Logger, error) {
	if level == "" || interactive {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.EncoderConfig.TimeKey = ""
	zc.DisableStacktrace = true
	return zc.Build()
}

func installLogger(l *zap.Logger) {
	alloc.SetLogger(l.Named("alloc"))
	array.SetLogger(l.Named("array"))
	stack.SetLogger(l.Named("stack"))
	text.SetLogger(l.Named("text"))
}
