// Package project locates the project root a hook invocation belongs to.
package project

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// markerFiles identify a project root when git is unavailable.
var markerFiles = []string{"package.json", "go.mod", ".gatewright"}

// FindRoot resolves the project root for dir: the enclosing git work tree
// when there is one, otherwise the nearest ancestor carrying a marker
// file. Hook processes start in the agent's working directory, which may
// be anywhere below the root.
func FindRoot(ctx context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project dir: %w", err)
	}
	if root, ok := gitToplevel(ctx, abs); ok {
		return root, nil
	}
	if root, ok := markerRoot(abs); ok {
		return root, nil
	}
	return "", fmt.Errorf("no project root found above %s", abs)
}

func gitToplevel(ctx context.Context, dir string) (string, bool) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("git toplevel lookup failed")
		return "", false
	}
	root := strings.TrimSpace(string(out))
	return root, root != ""
}

func markerRoot(dir string) (string, bool) {
	for cur := dir; ; cur = filepath.Dir(cur) {
		for _, marker := range markerFiles {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur, true
			}
		}
		if cur == filepath.Dir(cur) {
			return "", false
		}
	}
}
