package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "vb dev") {
		t.Errorf("expected output to contain 'vb dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"vb 1.0.0", "commit: abc123", "built: 2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	want := []string{"version", "db", "import", "export", "report", "handler", "document", "serve", "doctor"}
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, n := range want {
		if !names[n] {
			t.Errorf("root command missing %q subcommand", n)
		}
	}
}

func TestRootCmd_ConfigFlagDefault(t *testing.T) {
	cmd := newRootCmd()
	f := cmd.PersistentFlags().Lookup("config")
	if f == nil {
		t.Fatal("expected persistent --config flag")
	}
	if f.Shorthand != "c" {
		t.Errorf("shorthand = %q, want c", f.Shorthand)
	}
	if f.DefValue != "vbtrack.yaml" {
		t.Errorf("default = %q, want vbtrack.yaml", f.DefValue)
	}
}

func TestExecute_ReturnsExitCode(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})
	if code := execute(cmd); code != 0 {
		t.Errorf("execute(version) = %d, want 0", code)
	}

	cmd = newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"report", "--config", "/nonexistent/vbtrack.yaml"})
	if code := execute(cmd); code != 1 {
		t.Errorf("execute(report with missing config) = %d, want 1", code)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"Nghị quyết học phí", 10, "Nghị qu..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
