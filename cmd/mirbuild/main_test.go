package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const okInput = `{"module": "demo", "funcs": [
  {"name": "ok", "span": [0, 10], "result": "int", "body": {"expr": {"kind": "lit", "value": 7}}}]}`

const badInput = `{"module": "demo", "funcs": [
  {"name": "bad", "span": [0, 30], "body": {"stmts": [
    {"kind": "expr", "span": [2, 8], "expr": {"kind": "break", "span": [2, 7]}}]}}]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command. Flag values outlive a run, so callers
// pass every flag their assertions depend on.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color=off"}, args...))
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.json", okInput)
	bad := writeFile(t, dir, "bad.json", badInput)

	out, _, err := execute(t, "check", "--format=pretty", ok)
	if err != nil {
		t.Fatalf("check ok: %v", err)
	}
	if !strings.Contains(out, "1 functions ok") {
		t.Errorf("stdout = %q", out)
	}

	out, _, err = execute(t, "check", "--format=json", bad)
	var ee exitError
	if !errors.As(err, &ee) || ee.code != 1 {
		t.Fatalf("check bad: err = %v, want exit status 1", err)
	}
	var payload struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if payload.Count != 1 || payload.Diagnostics[0].Code != "MIR9001" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestLowerCommand(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.json", okInput)

	out, _, err := execute(t, "lower", "--ui=off", "--emit=text", "--scopes=false", ok)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, want := range []string{"funcs=1", "fn ok -> int:", "ret = const 7", "return"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	target := filepath.Join(dir, "ok.mp")
	if _, _, err := execute(t, "lower", "--ui=off", "--emit=msgpack", "--out", target, ok); err != nil {
		t.Fatalf("lower msgpack: %v", err)
	}
	if info, err := os.Stat(target); err != nil || info.Size() == 0 {
		t.Errorf("msgpack output: %v", err)
	}

	if _, _, err := execute(t, "lower", "--ui=off", "--emit=yaml", "--out=", ok); err == nil {
		t.Error("--emit=yaml accepted")
	}
}

func TestLowerUsesConfig(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.json", okInput)
	cfg := writeFile(t, dir, "custom.toml", "[lower]\nfast = true\n")

	_, _, err := execute(t, "lower", "--ui=off", "--emit=text", "--out=", "--config", cfg, ok)
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Errorf("err = %v, want unknown keys", err)
	}
	// Later runs must not inherit the broken config.
	if _, _, err := execute(t, "lower", "--config=", "--ui=off", "--out=", ok); err != nil {
		t.Fatalf("reset run: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version", "--format=json", "--full")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if payload.Tool != "mirbuild" || payload.Version == "" || payload.GitCommit == "" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		err  bool
	}{
		{in: "", want: uiModeAuto},
		{in: "AUTO", want: uiModeAuto},
		{in: " on ", want: uiModeOn},
		{in: "off", want: uiModeOff},
		{in: "sometimes", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := readUIMode(tt.in)
			if (err != nil) != tt.err || got != tt.want {
				t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
	if !shouldUseTUI(uiModeOn, true) || shouldUseTUI(uiModeOff, false) || shouldUseTUI(uiModeAuto, true) {
		t.Error("shouldUseTUI ignores the mode")
	}
}
