package nucmer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"dotprep/internal/extool"
)

func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fake tools need a POSIX shell")
	}
	fn := filepath.Join(t.TempDir(), "fake-nucmer")
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 'NUCmer 3.1'; exit 0; fi\n" + body
	if err := os.WriteFile(fn, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	return fn
}

func writeFasta(t *testing.T, dir, name, data string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(data), 0o644); err != nil {
		t.Fatalf("write fasta: %v", err)
	}
	return fn
}

func TestAlign_WritesDeltaAndPassesArgs(t *testing.T) {
	tool := fakeTool(t, "echo \"$@\" > args.txt\ntouch out.delta\n")
	n, err := New(context.Background(), tool)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := t.TempDir()
	ref := writeFasta(t, in, "ref.fa", ">gnl|Prokka|r1 c\nACGT\n")
	qry := writeFasta(t, in, "qry.fa", ">q1\nACGT\n")
	work := t.TempDir()

	delta, err := n.Align(context.Background(), ref, qry, work, []Arg{{"--mincluster", "65"}})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if delta != filepath.Join(work, DeltaFile) {
		t.Fatalf("delta path %s", delta)
	}
	args, _ := os.ReadFile(filepath.Join(work, "args.txt"))
	want := "--mincluster 65 " + filepath.Join(work, "ref.fasta.cleaned") + " " + filepath.Join(work, "qry.fasta.cleaned")
	if strings.TrimSpace(string(args)) != want {
		t.Fatalf("args %q\nwant %q", args, want)
	}
	cleaned, _ := os.ReadFile(filepath.Join(work, "ref.fasta.cleaned"))
	if string(cleaned) != ">r1\nACGT\n" {
		t.Fatalf("cleaned ref %q", cleaned)
	}
}

func TestAlign_NoClean(t *testing.T) {
	tool := fakeTool(t, "echo \"$@\" > args.txt\ntouch out.delta\n")
	n := &Nucmer{Path: tool}
	in := t.TempDir()
	ref := writeFasta(t, in, "ref.fa", ">r1\nACGT\n")
	qry := writeFasta(t, in, "qry.fa", ">q1\nACGT\n")
	work := t.TempDir()
	if _, err := n.Align(context.Background(), ref, qry, work, nil); err != nil {
		t.Fatalf("Align: %v", err)
	}
	args, _ := os.ReadFile(filepath.Join(work, "args.txt"))
	if strings.TrimSpace(string(args)) != ref+" "+qry {
		t.Fatalf("args %q", args)
	}
}

func TestAlign_ToolFailureCapturesOutput(t *testing.T) {
	tool := fakeTool(t, "echo 'bad things' >&2\nexit 3\n")
	n := &Nucmer{Path: tool}
	in := t.TempDir()
	ref := writeFasta(t, in, "ref.fa", ">r1\nA\n")
	_, err := n.Align(context.Background(), ref, ref, t.TempDir(), nil)
	if !errors.Is(err, extool.ErrToolFailed) {
		t.Fatalf("want extool.ErrToolFailed, got %v", err)
	}
	var te *extool.ToolError
	if !errors.As(err, &te) || !strings.Contains(te.Stderr, "bad things") {
		t.Fatalf("stderr not captured: %+v", te)
	}
}

func TestAlign_MissingDelta(t *testing.T) {
	tool := fakeTool(t, "exit 0\n")
	n := &Nucmer{Path: tool}
	ref := writeFasta(t, t.TempDir(), "ref.fa", ">r1\nA\n")
	if _, err := n.Align(context.Background(), ref, ref, t.TempDir(), nil); !errors.Is(err, extool.ErrToolFailed) {
		t.Fatalf("want extool.ErrToolFailed for missing delta, got %v", err)
	}
}

func TestAlign_Preconditions(t *testing.T) {
	n := &Nucmer{Path: "unused"}
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := n.Align(context.Background(), "a", "b", missing, nil); !errors.Is(err, ErrPrecondition) || !strings.Contains(err.Error(), missing) {
		t.Fatalf("want workdir error naming path, got %v", err)
	}
	work := t.TempDir()
	_ = os.WriteFile(filepath.Join(work, DeltaFile), nil, 0o644)
	if _, err := n.Align(context.Background(), "a", "b", work, nil); !errors.Is(err, ErrPrecondition) || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("want existing delta error, got %v", err)
	}
}

func TestNew_NotInstalled(t *testing.T) {
	if _, err := New(context.Background(), filepath.Join(t.TempDir(), "no-such-nucmer")); err == nil {
		t.Fatalf("expected install error")
	}
}
