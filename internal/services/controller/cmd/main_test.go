package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCommandMergesFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wall.yaml")
	if err := os.WriteFile(path, []byte("hostname: kitchen\nmqtt:\n  site: home\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WALLCTL_MQTT_PORT", "1884")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--config", path, "--hostname", "hall"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"hostname: hall", "site: home", "port: 1884"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
}

func TestConfigCommandRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wall.yaml")
	if err := os.WriteFile(path, []byte("events:\n  capacity: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"config", "-c", path})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "events.capacity") {
		t.Fatalf("got %v", err)
	}
}
