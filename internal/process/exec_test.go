package process

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/cruciblehq/cruxci/internal/fault"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name    string
		base    []string
		overlay map[string]string
		want    []string
	}{
		{
			name:    "override existing key in place",
			base:    []string{"A=1", "B=2", "C=3"},
			overlay: map[string]string{"B": "override"},
			want:    []string{"A=1", "B=override", "C=3"},
		},
		{
			name:    "append new keys sorted",
			base:    []string{"A=1"},
			overlay: map[string]string{"Z": "26", "M": "13"},
			want:    []string{"A=1", "M=13", "Z=26"},
		},
		{
			name:    "empty base",
			base:    nil,
			overlay: map[string]string{"CC": "gcc-12"},
			want:    []string{"CC=gcc-12"},
		},
		{
			name:    "empty overlay",
			base:    []string{"A=1"},
			overlay: nil,
			want:    []string{"A=1"},
		},
		{
			name: "both empty",
			want: []string{},
		},
		{
			name:    "value with equals sign",
			base:    []string{"TSAN_OPTIONS=exitcode=1"},
			overlay: map[string]string{"TSAN_OPTIONS": "exitcode=2 verbosity=1"},
			want:    []string{"TSAN_OPTIONS=exitcode=2 verbosity=1"},
		},
		{
			name:    "malformed base entries skipped",
			base:    []string{"NOEQUALS", "A=1"},
			overlay: map[string]string{"B": "2"},
			want:    []string{"A=1", "B=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overlay)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d\ngot:  %v\nwant: %v", len(got), len(tt.want), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd := Command{Args: []string{"cmake", "-D", "CMAKE_BUILD_TYPE=Release", "my dir", ""}}
	want := `cmake -D CMAKE_BUILD_TYPE=Release "my dir" ""`
	if got := cmd.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestExecSuccess(t *testing.T) {
	requireShell(t)

	var stdout bytes.Buffer
	r := NewExec(&stdout, nil)

	result, err := r.Run(context.Background(), Command{
		Args:          []string{"sh", "-c", "echo hello"},
		FailOnNonZero: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 || result.Failed {
		t.Fatalf("result = %+v, want exit 0 and not failed", result)
	}
	if strings.TrimSpace(stdout.String()) != "hello" {
		t.Fatalf("stdout = %q, want hello", stdout.String())
	}
}

func TestExecNonZeroPolicy(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name          string
		failOnNonZero bool
		wantFailed    bool
	}{
		{"treated as failure", true, true},
		{"recorded only", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewExec(nil, nil)
			result, err := r.Run(context.Background(), Command{
				Args:          []string{"sh", "-c", "exit 3"},
				FailOnNonZero: tt.failOnNonZero,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.ExitCode != 3 {
				t.Fatalf("exit code = %d, want 3", result.ExitCode)
			}
			if result.Failed != tt.wantFailed {
				t.Fatalf("failed = %v, want %v", result.Failed, tt.wantFailed)
			}
		})
	}
}

func TestExecEnvOverlay(t *testing.T) {
	requireShell(t)
	t.Setenv("CRUXCI_INHERITED", "kept")
	t.Setenv("CRUXCI_OVERRIDDEN", "old")

	var stdout bytes.Buffer
	r := NewExec(&stdout, nil)

	_, err := r.Run(context.Background(), Command{
		Args: []string{"sh", "-c", `echo "$CRUXCI_INHERITED $CRUXCI_OVERRIDDEN $CRUXCI_ADDED"`},
		Env: map[string]string{
			"CRUXCI_OVERRIDDEN": "new",
			"CRUXCI_ADDED":      "added",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "kept new added" {
		t.Fatalf("stdout = %q, want %q", got, "kept new added")
	}
}

func TestExecCommandStdoutOverride(t *testing.T) {
	requireShell(t)

	var runnerOut, cmdOut bytes.Buffer
	r := NewExec(&runnerOut, nil)

	_, err := r.Run(context.Background(), Command{
		Args:   []string{"sh", "-c", "echo captured"},
		Stdout: &cmdOut,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runnerOut.Len() != 0 {
		t.Fatalf("runner stdout = %q, want empty", runnerOut.String())
	}
	if strings.TrimSpace(cmdOut.String()) != "captured" {
		t.Fatalf("command stdout = %q, want captured", cmdOut.String())
	}
}

func TestExecToolNotFound(t *testing.T) {
	r := NewExec(nil, nil)
	_, err := r.Run(context.Background(), Command{
		Args:          []string{"cruxci-definitely-not-installed"},
		FailOnNonZero: true,
	})
	if !errors.Is(err, fault.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
}

func TestExecEmptyArgs(t *testing.T) {
	r := NewExec(nil, nil)
	_, err := r.Run(context.Background(), Command{})
	if !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestExecCancellation(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := NewExec(nil, nil)
	start := time.Now()
	_, err := r.Run(ctx, Command{Args: []string{"sh", "-c", "sleep 30"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("cancelled process was not killed promptly")
	}
}

func TestCheck(t *testing.T) {
	requireShell(t)

	r := NewExec(nil, nil)
	if err := Check(context.Background(), r, "cruxci-definitely-not-installed"); !errors.Is(err, fault.ErrToolNotFound) {
		t.Fatalf("missing tool: err = %v, want ErrToolNotFound", err)
	}
	if err := Check(context.Background(), r, "false"); !errors.Is(err, fault.ErrToolNotFound) {
		t.Fatalf("failing tool: err = %v, want ErrToolNotFound", err)
	}
}
