package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/tombee/cmdspec/internal/action"
)

// Read implements fileRead. The result is the file text, or parsed data
// when format is json, yaml, csv or lines.
func (c *FileAction) Read(ctx context.Context, inputs map[string]any) (any, error) {
	path, _ := action.String(inputs, "path")

	return c.operationWrapper(ctx, "fileRead", path, func(out *outcome) (any, error) {
		path, err := action.RequireString(inputs, "path")
		if err != nil {
			return nil, &OperationError{Operation: "fileRead", Message: err.Error(), ErrorType: ErrorTypeValidation}
		}
		format, _ := action.String(inputs, "format")

		resolved, err := c.resolver.Resolve(path)
		if err != nil {
			return nil, err
		}
		out.path = resolved

		content, err := c.readFile(resolved)
		if err != nil {
			return nil, err
		}
		out.bytesRead = int64(len(content))

		result, err := decode(stripBOM(content), format)
		if err != nil {
			return nil, &OperationError{
				Operation: "fileRead",
				Path:      path,
				Message:   fmt.Sprintf("cannot parse as %s: %v", format, err),
				ErrorType: ErrorTypeParse,
				Cause:     err,
			}
		}
		return result, nil
	})
}

func (c *FileAction) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("fileRead", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, ioError("fileRead", path, err)
	}
	if info.IsDir() {
		return nil, &OperationError{Operation: "fileRead", Path: path, Message: "path is a directory", ErrorType: ErrorTypeIsDirectory}
	}
	if info.Size() > c.config.MaxFileSize {
		return nil, tooLarge("fileRead", path, info.Size(), c.config.MaxFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(f, c.config.MaxFileSize+1))
	if err != nil {
		return nil, ioError("fileRead", path, err)
	}
	if int64(len(content)) > c.config.MaxFileSize {
		return nil, tooLarge("fileRead", path, int64(len(content)), c.config.MaxFileSize)
	}
	return content, nil
}

func ioError(operation, path string, err error) error {
	errType := ErrorTypeInternal
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errType = ErrorTypeNotFound
	case errors.Is(err, fs.ErrPermission):
		errType = ErrorTypePermission
	}
	return &OperationError{Operation: operation, Path: path, Message: err.Error(), ErrorType: errType, Cause: err}
}

func tooLarge(operation, path string, size, limit int64) error {
	return &OperationError{
		Operation: operation,
		Path:      path,
		Message:   fmt.Sprintf("size %d bytes exceeds limit of %d bytes", size, limit),
		ErrorType: ErrorTypeFileTooLarge,
	}
}
