package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 256 << 10
)

var inlineSeeds = []string{
	`{}`,
	`{"module": "m", "funcs": [{"name": "f", "body": {}}]}`,
	`{"funcs": [{"name": "f", "result": "int", "body": {"expr": {"kind": "lit", "value": 7}}}]}`,
	`{"funcs": [{"name": "f", "params": [{"name": "s", "type": "string"}], "body": {"stmts": [
	  {"kind": "let", "pattern": {"kind": "bind", "name": "t", "type": "string"}},
	  {"kind": "expr", "expr": {"kind": "assign", "lhs": {"kind": "var", "name": "t"}, "rhs": {"kind": "var", "name": "s"}}}]}}]}`,
	`{"funcs": [{"name": "f", "body": {"stmts": [{"kind": "expr", "expr": {"kind": "loop", "body": {"stmts": [
	  {"kind": "expr", "expr": {"kind": "continue"}},
	  {"kind": "expr", "expr": {"kind": "call", "name": "g", "type": "unit"}}]}}}]}}]}`,
	`{"funcs": [{"name": "f", "body": {"stmts": [{"kind": "expr", "expr": {"kind": "break"}}]}}]}`,
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
