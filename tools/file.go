package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// workspace resolves capability-supplied paths against a root directory and
// refuses anything that escapes it.
type workspace struct {
	root string
}

func newWorkspace(root string) workspace {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return workspace{root: abs}
}

// resolve maps a relative or absolute argument path into the workspace.
func (w workspace) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("missing file argument")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.root, path)
	}
	path = filepath.Clean(path)
	if path != w.root && !strings.HasPrefix(path, w.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the workspace", path)
	}
	return path, nil
}

func argPath(arguments map[string]any) string {
	if p, _ := arguments["file"].(string); p != "" {
		return p
	}
	p, _ := arguments["path"].(string)
	return p
}

// FileRead reads a workspace file.
type FileRead struct{ ws workspace }

// NewFileRead creates the file_read capability rooted at dir.
func NewFileRead(dir string) *FileRead { return &FileRead{ws: newWorkspace(dir)} }

func (f *FileRead) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	path, err := f.ws.resolve(argPath(arguments))
	if err != nil {
		return "", fmt.Errorf("file_read: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("file_read: %w", err)
	}
	return string(data), nil
}

// FileWrite writes or appends to a workspace file, creating parent
// directories as needed.
type FileWrite struct{ ws workspace }

// NewFileWrite creates the file_write capability rooted at dir.
func NewFileWrite(dir string) *FileWrite { return &FileWrite{ws: newWorkspace(dir)} }

func (f *FileWrite) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	path, err := f.ws.resolve(argPath(arguments))
	if err != nil {
		return "", fmt.Errorf("file_write: %w", err)
	}
	content, _ := arguments["content"].(string)
	appendMode, _ := arguments["append"].(bool)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("file_write: %w", err)
	}

	if appendMode {
		fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("file_write: %w", err)
		}
		defer fh.Close()
		if _, err := fh.WriteString(content); err != nil {
			return "", fmt.Errorf("file_write: %w", err)
		}
		return fmt.Sprintf("appended %d bytes to %s", len(content), path), nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("file_write: %w", err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
}

// FileStrReplace replaces one occurrence of a string in a workspace file.
type FileStrReplace struct{ ws workspace }

// NewFileStrReplace creates the file_str_replace capability rooted at dir.
func NewFileStrReplace(dir string) *FileStrReplace { return &FileStrReplace{ws: newWorkspace(dir)} }

func (f *FileStrReplace) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	path, err := f.ws.resolve(argPath(arguments))
	if err != nil {
		return "", fmt.Errorf("file_str_replace: %w", err)
	}
	oldStr, _ := arguments["old_str"].(string)
	newStr, _ := arguments["new_str"].(string)
	if oldStr == "" {
		return "", fmt.Errorf("file_str_replace: missing old_str argument")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("file_str_replace: %w", err)
	}
	content := string(data)

	count := strings.Count(content, oldStr)
	if count == 0 {
		return "", fmt.Errorf("file_str_replace: old_str not found in %s", path)
	}
	if count > 1 {
		return "", fmt.Errorf("file_str_replace: old_str occurs %d times in %s, must be unique", count, path)
	}

	content = strings.Replace(content, oldStr, newStr, 1)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("file_str_replace: %w", err)
	}
	return fmt.Sprintf("replaced 1 occurrence in %s", path), nil
}
