package diag_test

import (
	"testing"

	"mirbuild/internal/diag"
	"mirbuild/internal/source"
)

func TestBagLimitSortDedup(t *testing.T) {
	bag := diag.NewBag(3)
	r := diag.BagReporter{Bag: bag}
	diag.ReportError(r, diag.MirLabelNotFound, source.Span{Start: 10, End: 12}, "no loop 'outer").Emit()
	diag.ReportWarning(r, diag.HirInfo, source.Span{Start: 1, End: 2}, "note").Emit()
	diag.ReportError(r, diag.MirLabelNotFound, source.Span{Start: 10, End: 12}, "no loop 'outer").Emit()
	diag.ReportError(r, diag.MirInternal, source.Span{Start: 0, End: 1}, "dropped").Emit()

	if bag.Len() != 3 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("after dedup got %d items", len(items))
	}
	if items[0].Code != diag.HirInfo || items[1].Code != diag.MirLabelNotFound {
		t.Fatalf("unexpected order: %v, %v", items[0].Code, items[1].Code)
	}
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code diag.Code
		want string
	}{
		{diag.HirMalformed, "HIR1001"},
		{diag.IOLoadFileError, "IO4001"},
		{diag.MirSealedBlock, "MIR9004"},
		{diag.UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		sev     diag.Severity
		text    string
		isError bool
	}{
		{sev: diag.SevWarning, text: "WARNING"},
		{sev: diag.SevError, text: "ERROR", isError: true},
		{sev: diag.Severity(0), text: "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.text {
			t.Errorf("String(%d) = %q, want %q", tt.sev, got, tt.text)
		}
		if got := tt.sev.IsError(); got != tt.isError {
			t.Errorf("IsError(%d) = %t, want %t", tt.sev, got, tt.isError)
		}
	}
}
