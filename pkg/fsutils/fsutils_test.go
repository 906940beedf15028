package fsutils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

func TestCreateDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	// Test 1: Create a new directory
	if err := CreateDir(fs, "/work/new_dir"); err != nil {
		t.Fatalf("Test 1 failed: CreateDir returned error: %v", err)
	}
	if !DirExists(fs, "/work/new_dir") {
		t.Fatal("Test 1 failed: directory was not created")
	}

	// Test 2: Create a directory that already exists
	if err := CreateDir(fs, "/work/new_dir"); err != nil {
		t.Fatalf("Test 2 failed: CreateDir on existing dir returned error: %v", err)
	}

	// Test 3: Create nested directories
	if err := CreateDir(fs, "/work/parent/child"); err != nil {
		t.Fatalf("Test 3 failed: CreateDir for nested dirs returned error: %v", err)
	}
	if !DirExists(fs, "/work/parent/child") {
		t.Fatal("Test 3 failed: nested directory was not created")
	}
}

func TestWriteToFile(t *testing.T) {
	fs := afero.NewOsFs()
	tempDir := t.TempDir()

	// Test 1: Write to a new file, then overwrite it
	path := filepath.Join(tempDir, "testfile.txt")
	if err := WriteToFile(fs, path, []byte("Initial content")); err != nil {
		t.Fatalf("WriteToFile(%q) returned error: %v", path, err)
	}
	if err := WriteToFile(fs, path, []byte("Overwritten content")); err != nil {
		t.Fatalf("WriteToFile(%q) overwrite returned error: %v", path, err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Error reading back file %q: %v", path, err)
	}
	if string(got) != "Overwritten content" {
		t.Fatalf("Read content %q does not match overwritten content", string(got))
	}

	// Test 2: WriteToFile does not create parent directories
	missing := filepath.Join(tempDir, "non_existent_dir", "testfile.txt")
	if err := WriteToFile(fs, missing, []byte("Test")); err == nil {
		t.Fatalf("WriteToFile(%q) succeeded, expected error for non-existent directory", missing)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteFileAtomic(fs, "/cfg/nested/settings.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("WriteFileAtomic returned error: %v", err)
	}
	if err := WriteFileAtomic(fs, "/cfg/nested/settings.json", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("WriteFileAtomic overwrite returned error: %v", err)
	}

	got, err := afero.ReadFile(fs, "/cfg/nested/settings.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("content = %q, want %q", got, `{"a":2}`)
	}

	// No temp files may be left next to the target.
	entries, err := afero.ReadDir(fs, "/cfg/nested")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only settings.json", names)
	}
}

func TestFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/data/exists.txt", nil, 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if !FileExists(fs, "/data/exists.txt") {
		t.Error("FileExists returned false for an existing file")
	}
	if FileExists(fs, "/data/missing.txt") {
		t.Error("FileExists returned true for a missing file")
	}
	if FileExists(fs, "/data") {
		t.Error("FileExists returned true for a directory")
	}
}

func TestListDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"/repo/alpha", "/repo/beta"} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	if err := afero.WriteFile(fs, "/repo/notes.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	dirs, err := ListDirs(fs, "/repo")
	if err != nil {
		t.Fatalf("ListDirs returned error: %v", err)
	}
	sort.Strings(dirs)
	if len(dirs) != 2 || dirs[0] != "alpha" || dirs[1] != "beta" {
		t.Errorf("ListDirs = %v, want [alpha beta]", dirs)
	}

	missing, err := ListDirs(fs, "/nowhere")
	if err != nil {
		t.Fatalf("ListDirs on missing path returned error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("ListDirs on missing path = %v, want empty", missing)
	}
}

func TestCopyDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/src/config.json":       `{"template_type":"md"}`,
		"/src/template.md":       "# {{ title }}",
		"/src/assets/logo.txt":   "logo",
		"/src/assets/deep/a.txt": "deep",
	}
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}

	if err := CopyDir(fs, "/src", "/dst/copy"); err != nil {
		t.Fatalf("CopyDir returned error: %v", err)
	}

	for path, want := range files {
		dstPath := filepath.Join("/dst/copy", path[len("/src/"):])
		got, err := afero.ReadFile(fs, dstPath)
		if err != nil {
			t.Errorf("copied file %q missing: %v", dstPath, err)
			continue
		}
		if string(got) != want {
			t.Errorf("copied file %q = %q, want %q", dstPath, got, want)
		}
	}

	// Copying a file as a directory must fail.
	if err := CopyDir(fs, "/src/config.json", "/dst/bad"); err == nil {
		t.Error("CopyDir on a regular file succeeded, expected error")
	}
}
