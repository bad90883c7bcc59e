package ui

import (
	"math"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"mirbuild/internal/driver"
)

func TestProgressModelEvents(t *testing.T) {
	m := NewProgressModel("lower prog.json", nil).(*progressModel)

	events := []driver.ProgressEvent{
		{Func: "f", Status: driver.StatusQueued},
		{Func: "g", Status: driver.StatusQueued},
		{Func: "f", Stage: driver.StageLower, Status: driver.StatusWorking},
		{Func: "g", Stage: driver.StageLower, Status: driver.StatusError},
		{Stage: driver.StageValidate, Status: driver.StatusWorking},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}

	if len(m.items) != 2 {
		t.Fatalf("items = %+v", m.items)
	}
	if m.items[0].status != "lowering" || m.items[1].status != "error" {
		t.Errorf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}
	if m.stageLabel != "validating" {
		t.Errorf("stage label = %q", m.stageLabel)
	}
	if got := m.percent(); math.Abs(got-0.65) > 1e-9 {
		t.Errorf("percent = %f, want 0.65", got)
	}

	view := m.View()
	for _, want := range []string{"lower prog.json (validating)", "lowering", "error", " f\n", " g\n"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("done = %t, cmd = %v", m.done, cmd)
	}
	if !strings.Contains(m.View(), "done: lower prog.json") {
		t.Errorf("final view:\n%s", m.View())
	}
}

func TestProgressModelCapsRows(t *testing.T) {
	m := NewProgressModel("t", nil).(*progressModel)
	for i := range maxRows + 5 {
		m.applyEvent(driver.ProgressEvent{Func: strings.Repeat("x", i+1), Status: driver.StatusQueued})
	}
	if !strings.Contains(m.View(), "5 more functions") {
		t.Errorf("view does not summarize the overflow:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	got := truncate("a_rather_long_function_name", 10)
	if !strings.HasSuffix(got, "...") || runewidth.StringWidth(got) > 10 {
		t.Errorf("truncate = %q", got)
	}
}
