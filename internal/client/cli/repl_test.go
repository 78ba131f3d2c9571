package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  map[string][]string
	fail  map[string]error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return f.fail[name]
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register", nil)
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Refresh(ctx context.Context) error        { return f.record("refresh", nil) }
func (f *fakeExec) ForgotPassword(ctx context.Context) error { return f.record("forgot", nil) }
func (f *fakeExec) ResetPassword(ctx context.Context, args []string) error {
	return f.record("reset", args)
}
func (f *fakeExec) VerifyEmail(ctx context.Context, args []string) error {
	return f.record("verify", args)
}
func (f *fakeExec) Me(ctx context.Context) error { return f.record("me", nil) }
func (f *fakeExec) ShowUser(ctx context.Context, args []string) error {
	return f.record("user", args)
}
func (f *fakeExec) SetRole(ctx context.Context, args []string) error {
	return f.record("role", args)
}
func (f *fakeExec) Suspend(ctx context.Context, args []string) error {
	return f.record("suspend", args)
}
func (f *fakeExec) Activate(ctx context.Context, args []string) error {
	return f.record("activate", args)
}

// captureOutput swaps printlnFn for a recorder and restores it on cleanup.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := rdr(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"me",
		"user u-2",
		"role u-2 admin",
		"suspend u-2",
		"activate u-2",
		"verify tok",
		"reset tok2",
		"forgot",
		"refresh",
		"foobar",
		"logout",
		"register",
		"exit",
		"me",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, input)

	want := []string{"login", "me", "user", "role", "suspend", "activate", "verify", "reset", "forgot", "refresh", "logout", "register"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := strings.Join(exec.args["role"], " "); got != "u-2 admin" {
		t.Fatalf("role args = %q", got)
	}
	if got := strings.Join(exec.args["reset"], " "); got != "tok2" {
		t.Fatalf("reset args = %q", got)
	}

	joined := strings.Join(*out, "\n")
	for _, s := range []string{helpGuest, helpLoggedIn, "Unknown command: foobar", "Bye!", "ak status> "} {
		if !strings.Contains(joined, s) {
			t.Fatalf("output missing %q:\n%s", s, joined)
		}
	}
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{fail: map[string]error{"me": errors.New("unauthorized: please authenticate")}}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("me\n"))

	joined := strings.Join(*out, "\n")
	if !strings.Contains(joined, "Error: unauthorized: please authenticate") {
		t.Fatalf("error not printed:\n%s", joined)
	}
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("")))
	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}

	// a final line without newline still runs
	runREPL(context.Background(), exec, func() string { return "" }, rdr("refresh"))
	if len(exec.calls) != 1 || exec.calls[0] != "refresh" {
		t.Fatalf("calls = %v", exec.calls)
	}
}
