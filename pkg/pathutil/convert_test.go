package pathutil

import (
	"path/filepath"
	"testing"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "file under root",
			absPath:  filepath.Join("/home/user/project", "src", "main.go"),
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "file outside root stays absolute",
			absPath:  "/other/location/file.go",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.go",
		},
		{
			name:     "already relative",
			absPath:  "src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "root itself",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "empty path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
		{
			name:     "empty root",
			absPath:  "/home/user/project/main.go",
			rootDir:  "",
			expected: "/home/user/project/main.go",
		},
		{
			name:     "redundant elements cleaned",
			absPath:  "/home/user/project/./src/../src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRelative(tt.absPath, tt.rootDir)
			if got != tt.expected {
				t.Errorf("ToRelative(%q, %q) = %q, want %q", tt.absPath, tt.rootDir, got, tt.expected)
			}
		})
	}
}

func TestToAbsolute(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "relative path joined",
			relPath:  "src/main.go",
			rootDir:  "/home/user/project",
			expected: filepath.Join("/home/user/project", "src", "main.go"),
		},
		{
			name:     "absolute path unchanged",
			relPath:  "/etc/config.yaml",
			rootDir:  "/home/user/project",
			expected: "/etc/config.yaml",
		},
		{
			name:     "empty path yields root",
			relPath:  "",
			rootDir:  "/home/user/project",
			expected: "/home/user/project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAbsolute(tt.relPath, tt.rootDir)
			if got != tt.expected {
				t.Errorf("ToAbsolute(%q, %q) = %q, want %q", tt.relPath, tt.rootDir, got, tt.expected)
			}
		})
	}
}
