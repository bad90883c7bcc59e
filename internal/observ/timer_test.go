package observ_test

import (
	"strings"
	"testing"

	"mirbuild/internal/observ"
)

func TestTimerReport(t *testing.T) {
	timer := observ.NewTimer()
	if got := timer.Report(); len(got.Phases) != 0 || got.TotalMS != 0 {
		t.Fatalf("empty timer report = %+v", got)
	}

	end := timer.Track("decode")
	end("3 funcs")
	idx := timer.Begin("lower")
	timer.End(idx, "")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Name != "decode" || report.Phases[0].Note != "3 funcs" {
		t.Errorf("phase 0 = %+v", report.Phases[0])
	}
	if report.TotalMS < report.Phases[0].DurationMS {
		t.Errorf("total %f below a phase %f", report.TotalMS, report.Phases[0].DurationMS)
	}

	summary := timer.Summary()
	for _, want := range []string{"timings:\n", "decode", "// 3 funcs", "lower", "total"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
