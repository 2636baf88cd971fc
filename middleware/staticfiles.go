package middleware

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/isgasho/roa/router"
	"github.com/isgasho/roa/status"
)

var (
	// ErrStaticFilesNoFS is returned when StaticFilesConfig.FS is nil.
	ErrStaticFilesNoFS = errors.New("static files: file system must not be nil")
	// ErrStaticFilesNoIndex is returned when SPAFallback is set but FS has
	// no index file at its root.
	ErrStaticFilesNoIndex = errors.New("static files: index file is required for SPA fallback")
)

// StaticFilesConfig configures the static files leaf.
type StaticFilesConfig struct {
	// FS is served read-only. Required.
	FS fs.FS

	// Param names the router variable holding the file path, normally a
	// wildcard such as *{path}. Defaults to "path". When the variable is
	// absent the index file is served.
	Param string

	// Index is served for directories. Defaults to "index.html".
	Index string

	// SPAFallback serves the root index for paths that do not exist.
	SPAFallback bool
}

// StaticFilesHandler returns a leaf serving files from cfg.FS:
//
//	e, _ := r.On("/assets/*{path}")
//	e.Get(h)
//
// Directories serve their index file or 404. Paths containing dot segments
// are rejected with 404.
func StaticFilesHandler(cfg StaticFilesConfig) (router.HandlerFunc, error) {
	if cfg.FS == nil {
		return nil, ErrStaticFilesNoFS
	}

	param := cfg.Param
	if param == "" {
		param = "path"
	}

	index := cfg.Index
	if index == "" {
		index = "index.html"
	}

	if cfg.SPAFallback {
		if _, err := fs.Stat(cfg.FS, index); err != nil {
			return nil, ErrStaticFilesNoIndex
		}
	}

	fsys := cfg.FS

	return func(ctx *router.Context) error {
		name := "."
		if v, ok := ctx.TryParam(param); ok {
			name = strings.Trim(v.Value, "/")
			if name == "" {
				name = "."
			}
		}

		if !fs.ValidPath(name) {
			return status.New(http.StatusNotFound, "", false)
		}

		info, err := fs.Stat(fsys, name)
		switch {
		case err == nil && info.IsDir():
			name = path.Join(name, index)
		case errors.Is(err, fs.ErrNotExist) && cfg.SPAFallback:
			name = index
		}

		return ctx.WriteFile(fsys, name, router.Inline)
	}, nil
}
