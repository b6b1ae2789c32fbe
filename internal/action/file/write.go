package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tombee/cmdspec/internal/action"
)

// Write implements fileWrite. The file is replaced atomically unless append
// is set. The result is {"path", "bytes"}.
func (c *FileAction) Write(ctx context.Context, inputs map[string]any) (any, error) {
	path, _ := action.String(inputs, "path")

	return c.operationWrapper(ctx, "fileWrite", path, func(out *outcome) (any, error) {
		path, err := action.RequireString(inputs, "path")
		if err != nil {
			return nil, &OperationError{Operation: "fileWrite", Message: err.Error(), ErrorType: ErrorTypeValidation}
		}
		content, present := inputs["content"]
		if !present {
			return nil, &OperationError{Operation: "fileWrite", Path: path, Message: "content is required", ErrorType: ErrorTypeValidation}
		}
		appendMode, err := action.Bool(inputs, "append")
		if err != nil {
			return nil, &OperationError{Operation: "fileWrite", Path: path, Message: err.Error(), ErrorType: ErrorTypeValidation}
		}

		resolved, err := c.resolver.Resolve(path)
		if err != nil {
			return nil, err
		}
		out.path = resolved

		data, err := encodeContent(content)
		if err != nil {
			return nil, &OperationError{Operation: "fileWrite", Path: path, Message: err.Error(), ErrorType: ErrorTypeValidation, Cause: err}
		}
		if int64(len(data)) > c.config.MaxFileSize {
			return nil, tooLarge("fileWrite", path, int64(len(data)), c.config.MaxFileSize)
		}
		if c.quotaTracker != nil {
			if err := c.quotaTracker.TrackWrite(resolved, int64(len(data))); err != nil {
				return nil, err
			}
		}

		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return nil, ioError("fileWrite", path, err)
		}

		if appendMode {
			err = appendFile(resolved, data)
		} else {
			err = writeFileAtomic(resolved, data)
		}
		if err != nil {
			return nil, ioError("fileWrite", path, err)
		}
		out.bytesWritten = int64(len(data))

		return map[string]any{
			"path":  resolved,
			"bytes": len(data),
		}, nil
	})
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
