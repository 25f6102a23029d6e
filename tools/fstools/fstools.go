// Package fstools exposes basic filesystem operations to the model.
//
// Every tool checks existence first and answers a missing target with a
// "<path> does not exist" string instead of an error, so the model can relay
// the situation and retry with a corrected path. The checks make the tools
// idempotent: asking twice about a path that is gone yields the same answer
// twice.
package fstools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/mfalcone/eva"
	"github.com/mfalcone/eva/schema"
)

// Opener launches a file in the user's preferred application. Injected so
// tests and headless environments can substitute a no-op.
type Opener func(path string) error

// DefaultOpener opens the file with the platform's opener command.
func DefaultOpener(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

// Group is the filesystem tool group.
type Group struct {
	open Opener
}

// Option configures the group.
type Option func(*Group)

// WithOpener substitutes the function used by open_file.
func WithOpener(open Opener) Option {
	return func(g *Group) { g.open = open }
}

// New creates the filesystem tool group.
func New(opts ...Option) *Group {
	g := &Group{open: DefaultOpener}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tools returns the group's tools.
func (g *Group) Tools() []eva.Tool {
	return []eva.Tool{
		g.showFolderContentsTool(),
		g.openFileTool(),
		g.removeFileTool(),
		g.removeFolderTool(),
	}
}

func pathSchema(desc string) map[string]any {
	return schema.Object(map[string]*schema.Property{
		"path": schema.String(desc),
	}, "path")
}

func (g *Group) showFolderContentsTool() eva.Tool {
	return eva.NewTool(
		"show_folder_contents",
		"Lists the contents of a folder, one entry per line.",
		pathSchema("Absolute or relative path of the folder to list"),
		func(ctx context.Context, args map[string]any) (string, error) {
			path := eva.StringArg(args, "path", "")
			if !exists(path) {
				return path + " does not exist", nil
			}
			entries, err := os.ReadDir(path)
			if err != nil {
				return "", fmt.Errorf("listing folder '%s': %w", path, err)
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			sort.Strings(names)
			return strings.Join(names, "\n"), nil
		},
	)
}

func (g *Group) openFileTool() eva.Tool {
	return eva.NewTool(
		"open_file",
		"Opens a file with the default application for its type.",
		pathSchema("Path of the file to open"),
		func(ctx context.Context, args map[string]any) (string, error) {
			path := eva.StringArg(args, "path", "")
			if !exists(path) {
				return path + " does not exist", nil
			}
			if err := g.open(path); err != nil {
				return "", fmt.Errorf("opening file '%s': %w", path, err)
			}
			return "Opened file: " + path, nil
		},
	)
}

func (g *Group) removeFileTool() eva.Tool {
	return eva.NewTool(
		"remove_file",
		"Deletes a single file.",
		pathSchema("Path of the file to delete"),
		func(ctx context.Context, args map[string]any) (string, error) {
			path := eva.StringArg(args, "path", "")
			if !exists(path) {
				return path + " does not exist", nil
			}
			if err := os.Remove(path); err != nil {
				return "", fmt.Errorf("removing file '%s': %w", path, err)
			}
			return "Removed file: " + path, nil
		},
	)
}

func (g *Group) removeFolderTool() eva.Tool {
	return eva.NewTool(
		"remove_folder",
		"Deletes a folder and everything inside it.",
		pathSchema("Path of the folder to delete"),
		func(ctx context.Context, args map[string]any) (string, error) {
			path := eva.StringArg(args, "path", "")
			if !exists(path) {
				return path + " does not exist", nil
			}
			if err := os.RemoveAll(path); err != nil {
				return "", fmt.Errorf("removing folder '%s': %w", path, err)
			}
			return "Removed folder: " + path, nil
		},
	)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ eva.Group = (*Group)(nil)
