package build

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Git runs git commands against one repository directory. Every
// command targets the directory via -C, so callers always say which
// tree they mean. Stderr is captured and folded into returned errors.
type Git struct {
	dir  string
	prog string // overridable for tests
}

// NewGit returns a Git targeting the given directory.
func NewGit(dir string) *Git {
	return &Git{dir: dir, prog: "git"}
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", g.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, g.prog, fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), g.dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Head returns the commit hash the repository is checked out at.
func (g *Git) Head(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "HEAD")
}

// CloneRecursive clones url at branch into the target directory,
// including submodules. Unlike the other commands it does not target
// an existing repository, so -C is not injected.
func (g *Git) CloneRecursive(ctx context.Context, url, branch string) error {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, g.prog,
		"clone", "--branch", branch, "--recurse-submodules", url, g.dir)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("git clone %s into %s: %w (stderr: %s)",
			url, g.dir, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// CheckoutRecursive moves the repository to the given revision and
// syncs submodules to match.
func (g *Git) CheckoutRecursive(ctx context.Context, revision string) error {
	if _, err := g.run(ctx, "checkout", revision); err != nil {
		return err
	}
	_, err := g.run(ctx, "submodule", "update", "--init", "--recursive")
	return err
}

// SubmoduleDeinit deregisters all submodules, dropping their working
// trees.
func (g *Git) SubmoduleDeinit(ctx context.Context) error {
	_, err := g.run(ctx, "submodule", "deinit", "-f", "--all")
	return err
}
