package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/samcharles93/srmkit/internal/convert"
)

// maxUploadBytes bounds one multipart request; the largest merge carries a
// flashram image plus five controller pack images.
const maxUploadBytes = 4 << 20

// formSource serves conversion inputs from a parsed multipart form.
type formSource struct {
	form *multipart.Form
}

func parseForm(w http.ResponseWriter, r *http.Request) (*formSource, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		var pathErr *fs.PathError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			return nil, badForm("", "expected a multipart/form-data body")
		case errors.As(err, &tooLarge):
			return nil, badForm("", "request body exceeds %d bytes", tooLarge.Limit)
		case errors.As(err, &pathErr):
			// spooling to a temp file failed
			return nil, fmt.Errorf("buffer upload: %w", err)
		default:
			return nil, badForm("", "invalid multipart body: %v", err)
		}
	}
	return &formSource{form: r.MultipartForm}, nil
}

func (f *formSource) Fetch(ctx context.Context, key string) (*convert.File, error) {
	headers := f.form.File[key]
	if len(headers) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh := headers[0]
	r, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &convert.File{Name: filepath.Base(fh.Filename), Data: data}, nil
}

// Toggle reads checkbox-style values. Browsers send "on" for a checked box.
func (f *formSource) Toggle(key string) bool {
	vals := f.form.Value[key]
	if len(vals) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(vals[0])) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (f *formSource) close() {
	if f != nil && f.form != nil {
		_ = f.form.RemoveAll()
	}
}
