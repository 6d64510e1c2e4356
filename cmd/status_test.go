package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/focusflow/internal/shell"
)

func TestStatusDefaultOutput(t *testing.T) {
	setupTestEnv(t)

	mustRun(t, "task", "add", "Open one")
	mustRun(t, "timer", "log", "--duration", "25m", "--at", "today 00:00")

	out := mustRun(t, "status", "--refresh")
	for _, want := range []string{"-", "25/120m", "1d", "1 open"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q: %q", want, out)
		}
	}
	if shell.ReadCache(appConfig.DataDir) == nil {
		t.Error("status did not write the prompt cache")
	}
}

func TestStatusUsesFreshCache(t *testing.T) {
	setupTestEnv(t)

	now := time.Now()
	cache := &shell.PromptCache{
		State:        "idle",
		TodayMinutes: 99,
		GoalMinutes:  120,
		Streak:       7,
		TodayDate:    now.Format("2006-01-02"),
		UpdatedAt:    now,
	}
	if err := shell.WriteCache(appConfig.DataDir, cache); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, "status", "--format", "{{.TodayMinutes}} {{.Streak}}")
	if strings.TrimSpace(out) != "99 7" {
		t.Errorf("output = %q, want cached values", out)
	}

	// Mutating commands invalidate the cache.
	mustRun(t, "task", "add", "Invalidate")
	if shell.ReadCache(appConfig.DataDir) != nil {
		t.Error("cache survived a task change")
	}
}

func TestStatusEnv(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t, "status", "--env")
	for _, want := range []string{`export FOCUSFLOW_ICON="-"`, `export FOCUSFLOW_STATE="idle"`, `export FOCUSFLOW_STREAK="0"`} {
		if !strings.Contains(out, want) {
			t.Errorf("env output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusBadTemplate(t *testing.T) {
	setupTestEnv(t)

	if _, err := runCmd(t, "status", "--format", "{{.Nope"); err == nil {
		t.Error("expected template error")
	}
}

func TestInitShell(t *testing.T) {
	setupTestEnv(t)

	for _, sh := range shell.Shells {
		out := mustRun(t, "init", sh)
		if !strings.Contains(out, "focusflow status") {
			t.Errorf("%s init script does not call status:\n%s", sh, out)
		}
	}
	if _, err := runCmd(t, "init", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
