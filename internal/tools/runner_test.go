package tools

import (
	"context"
	"testing"
)

func TestExecRunnerSuccess(t *testing.T) {
	var r ExecRunner
	stdout, _, code, err := r.Run(context.Background(), t.TempDir(), "/bin/sh", "-c", "pwd")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if len(stdout) == 0 {
		t.Fatalf("expected stdout")
	}
}

func TestExecRunnerExitCode(t *testing.T) {
	var r ExecRunner
	_, stderr, code, err := r.Run(context.Background(), "", "/bin/sh", "-c", "echo nope >&2; exit 3")
	if err == nil {
		t.Fatalf("expected error")
	}
	if code != 3 {
		t.Fatalf("exit code = %d", code)
	}
	if len(stderr) == 0 {
		t.Fatalf("expected stderr")
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	var r ExecRunner
	_, _, code, err := r.Run(context.Background(), "", "definitely-not-a-real-binary")
	if err == nil {
		t.Fatalf("expected error")
	}
	if code != 127 {
		t.Fatalf("exit code = %d", code)
	}
}
