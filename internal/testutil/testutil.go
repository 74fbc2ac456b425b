package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/lherron/circmerge/internal/journal"
)

// LibraryXML is a small circuit library with units Adder, ALU8, ALU16 and Register.
const LibraryXML = `<?xml version='1.0' encoding='utf-8'?>
<project source="3.8.0" version="1.0">
  <lib desc="#Wiring" name="0"/>
  <main name="main"/>
  <circuit name="Adder">
    <a name="circuit" val="Adder"/>
    <comp lib="1" loc="(100,100)" name="XOR Gate"/>
    <comp lib="1" loc="(100,160)" name="AND Gate"/>
  </circuit>
  <circuit name="ALU8">
    <comp lib="3" loc="(200,200)" name="Adder"/>
  </circuit>
  <circuit name="ALU16">
    <comp lib="3" loc="(200,200)" name="Adder"/>
    <wire from="(0,0)" to="(10,0)"/>
  </circuit>
  <circuit name="Register">
    <comp lib="4" loc="(300,300)" name="Register"/>
  </circuit>
</project>
`

// ProjectXML is a destination project that already holds an Adder.
const ProjectXML = `<?xml version="1.0" encoding="UTF-8"?>
<project source="3.8.0" version="1.0">
  <lib desc="#Wiring" name="0"/>
  <main name="main"/>
  <circuit name="main">
    <wire from="(1,1)" to="(2,2)"/>
  </circuit>
  <circuit name="Adder">
    <wire from="(9,9)" to="(8,8)"/>
  </circuit>
</project>
`

// MenuJSON is a selection menu over LibraryXML.
const MenuJSON = `{
  "Arithmetic": {
    "Adder": "Adder",
    "ALUs": ["ALU8", "ALU16"]
  },
  "Memory": {
    "Register": "Register"
  },
  "Copy from another file": "copy_circ"
}`

// TempFS returns an in-memory filesystem and an absolute directory in it.
func TempFS(t *testing.T) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := filepath.Join(string(filepath.Separator), "work")
	if err := fs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	return fs, dir
}

// TempJournal opens a run journal in a temporary directory
func TempJournal(t *testing.T) (*journal.Journal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Failed to open journal: %v", err)
	}

	t.Cleanup(func() {
		j.Close()
	})

	return j, path
}

// WriteFile writes content to a file in dir on fs
func WriteFile(t *testing.T, fs afero.Fs, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file on fs
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertStringContains asserts that a string contains a substring
func AssertStringContains(t *testing.T, str, substr string) {
	t.Helper()
	if !strings.Contains(str, substr) {
		t.Fatalf("Expected string to contain %q, got %q", substr, str)
	}
}

// AssertCount asserts that substr occurs exactly n times in str
func AssertCount(t *testing.T, str, substr string, n int) {
	t.Helper()
	if got := strings.Count(str, substr); got != n {
		t.Fatalf("Expected %d occurrences of %q, got %d in %q", n, substr, got, str)
	}
}
