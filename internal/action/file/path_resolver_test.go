package file

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

func newResolver(t *testing.T) (*PathResolver, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "sandbox")
	require.NoError(t, os.MkdirAll(root, 0o755))
	r, err := NewPathResolver(&PathResolverConfig{Root: root})
	require.NoError(t, err)
	return r, r.Root()
}

func TestNewPathResolver_RequiresRoot(t *testing.T) {
	_, err := NewPathResolver(&PathResolverConfig{})
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeConfiguration, opErr.ErrorType)
}

func TestPathResolver_Resolve(t *testing.T) {
	r, root := newResolver(t)

	tests := []struct {
		name    string
		path    string
		want    string
		escapes bool
	}{
		{name: "relative file", path: "notes.txt", want: filepath.Join(root, "notes.txt")},
		{name: "nested new dirs", path: "a/b/c.json", want: filepath.Join(root, "a", "b", "c.json")},
		{name: "dot segments inside", path: "a/../b/./c.txt", want: filepath.Join(root, "b", "c.txt")},
		{name: "root itself", path: ".", want: root},
		{name: "dotdot prefixed name", path: "..data", want: filepath.Join(root, "..data")},
		{name: "absolute inside", path: filepath.Join(root, "x.txt"), want: filepath.Join(root, "x.txt")},
		{name: "parent escape", path: "../outside.txt", escapes: true},
		{name: "deep escape", path: "../../../../etc/passwd", escapes: true},
		{name: "escape after descent", path: "a/b/../../../x", escapes: true},
		{name: "absolute outside", path: "/etc/passwd", escapes: true},
		{name: "sibling with shared prefix", path: root + "-evil/x", escapes: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.path)
			if tt.escapes {
				var escape *cmderrors.PathEscapeError
				require.ErrorAs(t, err, &escape)
				assert.Equal(t, tt.path, escape.Path)
				assert.Equal(t, root, escape.Root)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathResolver_RejectsEmptyAndNUL(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.Resolve("")
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeValidation, opErr.ErrorType)

	_, err = r.Resolve("a\x00b")
	require.ErrorAs(t, err, &opErr)
}

func TestPathResolver_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	r, root := newResolver(t)
	outside := t.TempDir()

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "inner")))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0o755))

	// A symlinked directory pointing out of the sandbox is an escape, even
	// for files that do not exist yet.
	_, err := r.Resolve("link/new.txt")
	var escape *cmderrors.PathEscapeError
	require.ErrorAs(t, err, &escape)

	// Links that stay inside resolve to their target.
	got, err := r.Resolve("inner/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "file.txt"), got)
}

func TestPathResolver_AllowedRoots(t *testing.T) {
	root := t.TempDir()
	temp := t.TempDir()
	r, err := NewPathResolver(&PathResolverConfig{Root: root, AllowedRoots: []string{temp}})
	require.NoError(t, err)

	canonicalTemp, err := filepath.EvalSymlinks(temp)
	require.NoError(t, err)

	got, err := r.Resolve(filepath.Join(temp, "scratch.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonicalTemp, "scratch.txt"), got)
}

func TestIsWithin(t *testing.T) {
	assert.True(t, isWithin("/a/b", "/a/b"))
	assert.True(t, isWithin("/a/b", "/a/b/c"))
	assert.True(t, isWithin("/a/b", "/a/b/..c"))
	assert.False(t, isWithin("/a/b", "/a/bc"))
	assert.False(t, isWithin("/a/b", "/a"))
	assert.False(t, isWithin("/a/b", "/x/y"))
}
