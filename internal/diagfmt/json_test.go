package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"mirbuild/internal/diag"
	"mirbuild/internal/source"
)

func TestJSONBasic(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "MIR9001" || d.Title != "Loop label not found" {
		t.Errorf("header = %+v", d)
	}
	if d.Location.File != "prog.json" || d.Location.StartLine != 3 || d.Location.StartCol != 12 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 2 {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestJSONMaxAndPositions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.json", []byte("{}\n"))
	bag := diag.NewBag(0)
	for i := range 3 {
		bag.Add(diag.NewError(diag.HirMalformed, source.Span{File: id, Start: uint32(i), End: uint32(i + 1)}, "bad"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 || out.Dropped != 1 {
		t.Fatalf("count = %d, dropped = %d", out.Count, out.Dropped)
	}
	loc := out.Diagnostics[1].Location
	if loc.StartLine != 0 || loc.StartByte != 1 || loc.File != "a.json" {
		t.Errorf("location without positions = %+v", loc)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Errorf("notes included without IncludeNotes")
	}
}
