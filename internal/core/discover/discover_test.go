package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeProjectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/Users/neil/xuku/invoice", "-Users-neil-xuku-invoice"},
		{"/work/my.app", "-work-my-app"},
		{"/", "-"},
	}
	for _, tt := range tests {
		if got := EncodeProjectPath(tt.in); got != tt.want {
			t.Errorf("EncodeProjectPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeProjectDir(t *testing.T) {
	if got := DecodeProjectDir("-Users-neil-demo"); got != "/Users/neil/demo" {
		t.Errorf("DecodeProjectDir = %q", got)
	}
}

func TestSessionFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.jsonl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jsonl"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := SessionFiles(dir)
	if err != nil {
		t.Fatalf("SessionFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("file count = %d, want 2 (jsonl files only)", len(files))
	}
}

func TestSessionFiles_MissingDir(t *testing.T) {
	files, err := SessionFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if files != nil {
		t.Errorf("files = %v, want nil", files)
	}
}
