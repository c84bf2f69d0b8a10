package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/risutools/charx/internal/config"
	charxerr "github.com/risutools/charx/internal/errors"
)

var archiveExts = []string{ArchiveExt}

func TestValidatePath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../backup.charx"},
		{"deep traversal", "../../etc/backup.charx"},
		{"mid-path traversal", "/tmp/../etc/backup.charx"},
		{"hidden in path", "/tmp/safe/../../../etc/shadow.charx"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckWrite, archiveExts, cfg)
			if err == nil {
				t.Error("expected error for path traversal, got nil")
			}
			if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_ExtensionRequired(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow any directory

	tests := []struct {
		name string
		path string
	}{
		{"no extension", "/tmp/archive"},
		{"wrong extension", "/tmp/archive.zip"},
		{"txt extension", "/tmp/archive.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckWrite, archiveExts, cfg)
			if err == nil {
				t.Error("expected error for wrong extension, got nil")
			}
			if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_ExtensionCaseInsensitive(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	if err := ValidatePath("/tmp/archive.CHARX", PathCheckWrite, archiveExts, cfg); err != nil {
		t.Errorf("uppercase extension should be accepted, got: %v", err)
	}
}

func TestValidatePath_EmptyExtsAllowsAny(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	if err := ValidatePath("/tmp/payload.bin", PathCheckWrite, nil, cfg); err != nil {
		t.Errorf("nil exts should allow any extension, got: %v", err)
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	cfg := config.DefaultConfig()
	// Default config: only ~/.charx/exports allowed

	err := ValidatePath("/tmp/backup.charx", PathCheckWrite, archiveExts, cfg)
	if err == nil {
		t.Error("expected error for path outside allowed directories, got nil")
	}
	if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	testFile := filepath.Join(tmpDir, "test.charx")
	if err := os.WriteFile(testFile, []byte("PK"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if err := ValidatePath(testFile, PathCheckRead, archiveExts, cfg); err != nil {
		t.Errorf("expected success with AllowUnsafePaths=true, got: %v", err)
	}

	writePath := filepath.Join(tmpDir, "output.charx")
	if err := ValidatePath(writePath, PathCheckWrite, archiveExts, cfg); err != nil {
		t.Errorf("expected success for write with AllowUnsafePaths=true, got: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	testFile := filepath.Join(tmpDir, "test.charx")
	if err := os.WriteFile(testFile, []byte("PK"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if err := ValidatePath(testFile, PathCheckRead, archiveExts, cfg); err != nil {
		t.Errorf("expected success for path in AllowedPaths, got: %v", err)
	}

	otherDir := t.TempDir()
	otherFile := filepath.Join(otherDir, "other.charx")
	if err := os.WriteFile(otherFile, []byte("PK"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if err := ValidatePath(otherFile, PathCheckRead, archiveExts, cfg); err == nil {
		t.Error("expected error for path outside AllowedPaths, got nil")
	}
}

func TestValidatePath_FileNotFound_ReadMode(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	nonExistent := filepath.Join(tmpDir, "nonexistent.charx")
	err := ValidatePath(nonExistent, PathCheckRead, archiveExts, cfg)
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
	if !charxerr.Is(err, charxerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	otherDir := t.TempDir()
	targetFile := filepath.Join(otherDir, "secret.charx")
	if err := os.WriteFile(targetFile, []byte("PK"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}

	symlink := filepath.Join(tmpDir, "link.charx")
	if err := os.Symlink(targetFile, symlink); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	err := ValidatePath(symlink, PathCheckRead, archiveExts, cfg)
	if err == nil {
		t.Error("expected error for symlink, got nil")
	}
	if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	targetFile := filepath.Join(tmpDir, "target.charx")
	if err := os.WriteFile(targetFile, []byte("PK"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}

	symlink := filepath.Join(tmpDir, "link.charx")
	if err := os.Symlink(targetFile, symlink); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	// AllowUnsafePaths bypasses directory restrictions, NOT symlink
	// restrictions. O_NOFOLLOW is always used at open time, so validation
	// should match.
	err := ValidatePath(symlink, PathCheckRead, archiveExts, cfg)
	if err == nil {
		t.Error("expected error for symlink even with AllowUnsafePaths=true, got nil")
	}
	if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_NestedPathRejected_Read(t *testing.T) {
	allowedDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowedDir}

	subDir := filepath.Join(allowedDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}
	targetFile := filepath.Join(subDir, "test.charx")
	if err := os.WriteFile(targetFile, []byte("PK"), 0600); err != nil {
		t.Fatalf("failed to create target file: %v", err)
	}

	// Nested paths are rejected to prevent TOCTOU attacks on directory
	// components.
	err := ValidatePath(targetFile, PathCheckRead, archiveExts, cfg)
	if err == nil {
		t.Error("expected error for nested path, got nil")
	}
	if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_NestedPathRejected_Write(t *testing.T) {
	allowedDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowedDir}

	subDir := filepath.Join(allowedDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	nestedPath := filepath.Join(subDir, "out.charx")
	err := ValidatePath(nestedPath, PathCheckWrite, archiveExts, cfg)
	if err == nil {
		t.Error("expected error for nested path, got nil")
	}
	if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/file.txt", false},
		{"../file.txt", true},
		{"/home/../etc/passwd", true},
		{"./file.txt", false},
		{"/home/user/.hidden/file.txt", false},
		{"file..name.txt", false}, // .. not as path component
		{"/tmp/a/b/../c.charx", true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			result := containsTraversal(tc.path)
			if result != tc.contains {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, result, tc.contains)
			}
		})
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "luna", "luna"},
		{"with spaces", "luna nightwright", "luna nightwright"},
		{"forward slash", "path/to/file", "path-to-file"},
		{"backslash", "path\\to\\file", "path-to-file"},
		{"double dots", "foo..bar", "foo-bar"},
		{"traversal attempt", "../../../etc/passwd", "etc-passwd"},
		{"absolute path", "/tmp/evil", "tmp-evil"},
		{"mixed attack", "../foo/bar\\..\\baz", "foo-bar-baz"},
		{"null bytes", "foo\x00bar", "foobar"},
		{"control chars", "foo\x01\x02bar", "foobar"},
		{"empty after sanitize", "../../..", "unnamed"},
		{"only slashes", "///", "unnamed"},
		{"unicode preserved", "card-中文", "card-中文"},
		{"multiple dashes collapse", "a---b", "a-b"},
		{"leading dashes trimmed", "---foo", "foo"},
		{"trailing dashes trimmed", "foo---", "foo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := SanitizeForFilename(tc.input)
			if result != tc.expected {
				t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}
