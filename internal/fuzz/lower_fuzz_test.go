package fuzztests

import (
	"context"
	"testing"
	"time"

	"mirbuild/internal/hir"
	"mirbuild/internal/mir"
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// lowerTimeout bounds one input; exceeding it means a loop that never ends.
const lowerTimeout = 5 * time.Second

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// lowerAndCheck decodes input and lowers every function. Functions that
// lower must validate, and must still validate after SimplifyCFG.
func lowerAndCheck(t *testing.T, input []byte) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("fuzz.json", input)
	in := types.NewInterner()
	m, err := hir.Decode(fs.Get(id).Content, in, id)
	if err != nil {
		return
	}
	for _, fn := range m.Funcs {
		f, err := mir.LowerFunc(fn, in, mir.Options{})
		if err != nil {
			continue
		}
		if err := mir.ValidateFunc(f, in); err != nil {
			t.Fatalf("fn %s: lowered graph is invalid: %v", fn.Name, err)
		}
		mir.SimplifyCFG(f)
		if err := mir.ValidateFunc(f, in); err != nil {
			t.Fatalf("fn %s: simplified graph is invalid: %v", fn.Name, err)
		}
	}
}

func FuzzLowerValidates(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		lowerAndCheck(t, clampInput(input))
	})
}

// FuzzLowerNoHang runs each input under a deadline.
func FuzzLowerNoHang(f *testing.F) {
	addCorpusSeeds(f)
	// deep nesting
	f.Add([]byte(`{"funcs": [{"name": "f", "body": {"expr": {"kind": "block", "block": {"expr": {"kind": "block", "block": {"expr": {"kind": "block", "block": {}}}}}}}}]}`))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx, cancel := context.WithTimeout(context.Background(), lowerTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			id := fs.AddVirtual("fuzz.json", input)
			in := types.NewInterner()
			m, err := hir.Decode(fs.Get(id).Content, in, id)
			if err != nil {
				return
			}
			for _, fn := range m.Funcs {
				_, _ = mir.LowerFunc(fn, in, mir.Options{})
			}
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("lowering hung on %d bytes of input", len(input))
		}
	})
}
