package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribe.yaml")
	content := "server:\n  addr: \":0\"\nwebhook:\n  replay:\n    backend: memory\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := Run([]string{"-config", path, "-check"}, &stderr); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "configuration ok") {
		t.Errorf("stderr = %s", stderr.String())
	}
}

func TestRunErrors(t *testing.T) {
	var stderr bytes.Buffer
	if code := Run([]string{"-nope"}, &stderr); code != 2 {
		t.Errorf("bad flag exit = %d", code)
	}

	if code := Run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &stderr); code != 1 {
		t.Errorf("missing file exit = %d", code)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("webhook:\n  replay:\n    backend: etcd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if code := Run([]string{"-config", path, "-check"}, &stderr); code != 1 {
		t.Errorf("invalid config exit = %d", code)
	}
}
