package runner

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestCappedBuffer(t *testing.T) {
	buf := cappedBuffer{limit: 10}

	n, err := buf.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Errorf("first write: n=%d, err=%v", n, err)
	}

	// Write more than remaining capacity
	n, err = buf.Write([]byte("world!!!"))
	if err != nil {
		t.Errorf("second write error: %v", err)
	}
	if n != 8 {
		t.Errorf("second write n=%d, want 8", n)
	}
	if got := buf.String(); got != "helloworld" {
		t.Errorf("buffer = %q, want %q", got, "helloworld")
	}

	// Further writes should be silently dropped
	n, err = buf.Write([]byte("overflow"))
	if err != nil || n != 8 {
		t.Errorf("overflow write: n=%d, err=%v", n, err)
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunCapturesOutput(t *testing.T) {
	requireSh(t)
	res, err := Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Stdout) != "out\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.Stderr != "err\n" {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestRunExitError(t *testing.T) {
	requireSh(t)
	_, err := Run(context.Background(), "", "sh", "-c", "echo broken >&2; exit 3")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 || exitErr.Stderr != "broken\n" {
		t.Errorf("unexpected %+v", exitErr)
	}
}

func TestRunInputFeedsStdin(t *testing.T) {
	requireSh(t)
	res, err := RunInput(context.Background(), "", []byte("piped"), "sh", "-c", "cat")
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Stdout) != "piped" {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), "", "aqs-no-such-tool")
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPRemote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"git@gitlab.renkulab.io:astro/crab.git", "https://gitlab.renkulab.io/astro/crab"},
		{"ssh://git@gitlab.com/astro/crab.git", "https://gitlab.com/astro/crab"},
		{"https://github.com/oda-hub/renku-aqs.git\n", "https://github.com/oda-hub/renku-aqs"},
		{"https://github.com/oda-hub/renku-aqs", "https://github.com/oda-hub/renku-aqs"},
	}
	for _, tt := range tests {
		if got := HTTPRemote(tt.in); got != tt.want {
			t.Errorf("HTTPRemote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRemoteURLInRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	ctx := context.Background()
	dir := t.TempDir()
	if _, err := GitOutput(ctx, dir, "init", "-q"); err != nil {
		t.Fatalf("git init: %v", err)
	}
	if _, err := GitOutput(ctx, dir, "remote", "add", "origin", "git@example.org:team/project.git"); err != nil {
		t.Fatalf("git remote add: %v", err)
	}
	got, err := RemoteURL(ctx, dir, "origin")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.org/team/project" {
		t.Errorf("got %q", got)
	}
	if _, err := RemoteURL(ctx, dir, "upstream"); err == nil {
		t.Error("unknown remote should fail")
	}
}
