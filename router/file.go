package router

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"

	"github.com/isgasho/roa/status"
)

// Disposition selects the Content-Disposition type written by WriteFile.
type Disposition int

const (
	// Inline lets the client display the file.
	Inline Disposition = iota
	// Attachment asks the client to download the file.
	Attachment
)

func (d Disposition) String() string {
	if d == Attachment {
		return "attachment"
	}
	return "inline"
}

// WriteFile serves the regular file name from fsys. Content-Type comes
// from the extension, defaulting to application/octet-stream, and
// Content-Disposition carries the base name. Range and conditional
// requests are honoured when the file is seekable.
//
// A missing file or a directory fails with a non-exposed 404, an invalid
// name with a non-exposed 400.
func (c *Context) WriteFile(fsys fs.FS, name string, disposition Disposition) error {
	if !fs.ValidPath(name) {
		return status.Errorf(http.StatusBadRequest, false, "invalid file name %q", name)
	}

	f, err := fsys.Open(name)
	if err != nil {
		return fileError(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fileError(err)
	}

	if info.IsDir() {
		return status.New(http.StatusNotFound, "", false)
	}

	base := path.Base(name)

	contentType := mime.TypeByExtension(path.Ext(base))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := c.Response.Header()
	h.Set("Content-Type", contentType)
	if v := mime.FormatMediaType(disposition.String(), map[string]string{"filename": base}); v != "" {
		h.Set("Content-Disposition", v)
	}

	if rs, ok := f.(io.ReadSeeker); ok {
		http.ServeContent(c.Response, c.Request, base, info.ModTime(), rs)
		return nil
	}

	c.Response.WriteHeader(http.StatusOK)
	if c.Method() == http.MethodHead {
		return nil
	}

	if _, err := io.Copy(c.Response, f); err != nil {
		return status.Wrap(http.StatusInternalServerError, err, false)
	}

	return nil
}

func fileError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return status.Wrap(http.StatusNotFound, err, false)
	case errors.Is(err, fs.ErrPermission):
		return status.Wrap(http.StatusForbidden, err, false)
	default:
		return status.Wrap(http.StatusInternalServerError, err, false)
	}
}
