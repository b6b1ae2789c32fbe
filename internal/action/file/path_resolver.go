package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

// PathResolver maps step paths onto the sandbox and rejects anything that
// would land outside it.
type PathResolver struct {
	root         string
	allowedRoots []string
}

// PathResolverConfig holds configuration for the PathResolver.
type PathResolverConfig struct {
	// Root is the sandbox directory. Relative paths are joined to it.
	Root string

	// AllowedRoots are further directories paths may resolve into, such as
	// the per-process temp directory.
	AllowedRoots []string
}

// NewPathResolver creates a new PathResolver with the given configuration.
// Roots are made absolute and have their symlinks resolved once, so later
// containment checks compare canonical forms.
func NewPathResolver(config *PathResolverConfig) (*PathResolver, error) {
	if config == nil || config.Root == "" {
		return nil, &OperationError{
			Message:   "sandbox root is not configured",
			ErrorType: ErrorTypeConfiguration,
		}
	}

	root, err := canonicalRoot(config.Root)
	if err != nil {
		return nil, err
	}

	r := &PathResolver{root: root}
	for _, extra := range config.AllowedRoots {
		if extra == "" {
			continue
		}
		canonical, err := canonicalRoot(extra)
		if err != nil {
			return nil, err
		}
		r.allowedRoots = append(r.allowedRoots, canonical)
	}
	return r, nil
}

// Root returns the canonical sandbox root.
func (r *PathResolver) Root() string {
	return r.root
}

// Resolve returns the absolute, canonical form of path. A path that resolves
// outside every allowed root yields *errors.PathEscapeError.
func (r *PathResolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", &OperationError{
			Message:   "path is empty",
			ErrorType: ErrorTypeValidation,
		}
	}
	if strings.ContainsRune(path, 0) {
		return "", &OperationError{
			Path:      path,
			Message:   "path contains a NUL byte",
			ErrorType: ErrorTypeValidation,
		}
	}

	absPath := path
	if !filepath.IsAbs(path) {
		absPath = filepath.Join(r.root, path)
	}

	canonical, err := canonicalizePath(filepath.Clean(absPath))
	if err != nil {
		return "", err
	}

	if !r.contains(canonical) {
		return "", &cmderrors.PathEscapeError{
			Path:     path,
			Resolved: canonical,
			Root:     r.root,
		}
	}
	return canonical, nil
}

func (r *PathResolver) contains(path string) bool {
	if isWithin(r.root, path) {
		return true
	}
	for _, root := range r.allowedRoots {
		if isWithin(root, path) {
			return true
		}
	}
	return false
}

// isWithin reports whether path equals dir or lies beneath it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// canonicalizePath resolves symlinks in the deepest existing ancestor of
// path and re-attaches the components that do not exist yet.
func canonicalizePath(path string) (string, error) {
	existing := path
	var tail []string
	for {
		_, err := os.Lstat(existing)
		if err == nil {
			break
		}
		if !os.IsNotExist(err) {
			return "", &OperationError{
				Path:      path,
				Message:   fmt.Sprintf("failed to stat path: %v", err),
				ErrorType: ErrorTypeInternal,
				Cause:     err,
			}
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return path, nil
		}
		tail = append(tail, filepath.Base(existing))
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", &OperationError{
			Path:      path,
			Message:   fmt.Sprintf("failed to evaluate symlinks: %v", err),
			ErrorType: ErrorTypeInternal,
			Cause:     err,
		}
	}

	for i := len(tail) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, tail[i])
	}
	return resolved, nil
}

func canonicalRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &OperationError{
			Path:      dir,
			Message:   fmt.Sprintf("failed to resolve sandbox root: %v", err),
			ErrorType: ErrorTypeConfiguration,
			Cause:     err,
		}
	}
	return canonicalizePath(abs)
}
