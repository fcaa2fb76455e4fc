package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.asm")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func missingConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "no-config.toml")
}

func TestRun_NoArgumentsPrintsUsage(t *testing.T) {
	if code := run(nil); code != 0 {
		t.Errorf("no arguments should exit 0, got %d", code)
	}
}

func TestRun_MissingOutputFlag(t *testing.T) {
	input := writeSource(t, "CLS\n")
	if code := run([]string{input, "--config", missingConfig(t)}); code != -1 {
		t.Errorf("missing -o should exit -1, got %d", code)
	}
}

func TestRun_UnopenableInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.bin")
	if code := run([]string{"no-such-file.asm", "-o", out, "--config", missingConfig(t)}); code != -1 {
		t.Errorf("unopenable input should exit -1, got %d", code)
	}
}

func TestRun_OutputCollidesWithInput(t *testing.T) {
	input := writeSource(t, "CLS\n")
	if code := run([]string{input, "-o", input, "--config", missingConfig(t)}); code != -1 {
		t.Errorf("output colliding with input should exit -1, got %d", code)
	}
}

func TestRun_SuccessfulAssembly(t *testing.T) {
	input := writeSource(t, "CLS\nRET\n")
	out := filepath.Join(t.TempDir(), "out.bin")

	if code := run([]string{input, "-o", out, "--config", missingConfig(t)}); code != 0 {
		t.Fatalf("assembly should exit 0, got %d", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if len(data) != 4 || data[0] != 0x00 || data[1] != 0xE0 || data[2] != 0x00 || data[3] != 0xEE {
		t.Errorf("output bytes = % X", data)
	}
}

func TestRun_ErrorsSuppressOutputButExitZero(t *testing.T) {
	input := writeSource(t, "FROB\n")
	out := filepath.Join(t.TempDir(), "out.bin")

	if code := run([]string{input, "-o", out, "--config", missingConfig(t)}); code != 0 {
		t.Fatalf("assembly errors still exit 0, got %d", code)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file should not be written when errors were reported")
	}
}
