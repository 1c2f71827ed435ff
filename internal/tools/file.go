package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ReadFile reads the text contents of a file.
type ReadFile struct{}

func (t *ReadFile) Name() string        { return "read_file" }
func (t *ReadFile) Description() string { return "Read the text contents of a file." }

// Run reads args["path"], resolving relative paths against the working
// directory.
func (t *ReadFile) Run(_ Context, args map[string]string) (Result, error) {
	path := args["path"]
	if path == "" {
		return Result{}, fmt.Errorf("read_file: 'path' argument is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("read_file: resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("read_file: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("read_file: expected a file but got directory: %s", abs)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, fmt.Errorf("read_file: %w", err)
	}
	return Result{
		Content:  string(content),
		Metadata: map[string]string{"tool": t.Name(), "path": abs},
	}, nil
}

// ListDir lists directory entries for a path.
type ListDir struct{}

func (t *ListDir) Name() string        { return "list_dir" }
func (t *ListDir) Description() string { return "List directory entries for a given path." }

// Run lists args["path"], defaulting to the current directory, with
// entries sorted by name.
func (t *ListDir) Run(_ Context, args map[string]string) (Result, error) {
	path := args["path"]
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("list_dir: resolve %s: %w", path, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Result{}, fmt.Errorf("list_dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return Result{
		Content:  strings.Join(names, "\n"),
		Metadata: map[string]string{"tool": t.Name(), "path": abs},
	}, nil
}

// WriteFile writes text content to a file inside the workspace.
type WriteFile struct {
	// Root confines writes; paths outside it are rejected. Defaults to
	// the current working directory.
	Root string
}

func (t *WriteFile) Name() string        { return "write_file" }
func (t *WriteFile) Description() string { return "Write text content to a file inside the workspace." }

// Run writes args["content"] to args["path"], creating parent directories
// as needed. The target must resolve inside the configured root.
func (t *WriteFile) Run(_ Context, args map[string]string) (Result, error) {
	path := args["path"]
	if path == "" {
		return Result{}, fmt.Errorf("write_file: 'path' argument is required")
	}
	content, ok := args["content"]
	if !ok {
		return Result{}, fmt.Errorf("write_file: 'content' argument is required")
	}

	root := t.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Result{}, fmt.Errorf("write_file: %w", err)
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("write_file: resolve root: %w", err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return Result{}, fmt.Errorf("write_file: may only operate within the workspace")
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return Result{}, fmt.Errorf("write_file: %w", err)
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return Result{}, fmt.Errorf("write_file: %w", err)
	}
	return Result{
		Content:  fmt.Sprintf("Wrote %d characters to %s", utf8.RuneCountInString(content), target),
		Metadata: map[string]string{"tool": t.Name(), "path": target},
	}, nil
}
