// Package web serves the browser UI from a directory next to the API.
package web

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// GetFileSystem returns dir as a filesystem root.
func GetFileSystem(dir string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrInvalid}
	}
	return os.DirFS(dir), nil
}

// RegisterStaticRoutes serves staticFS under basePath.
// The API routes should be registered before calling this function.
func RegisterStaticRoutes(e *echo.Echo, basePath string, staticFS fs.FS) {
	fileServer := http.StripPrefix(basePath, http.FileServer(http.FS(staticFS)))

	handler := func(c echo.Context) error {
		requestPath := strings.TrimPrefix(c.Request().URL.Path, basePath)

		// Clean the path
		requestPath = path.Clean("/" + requestPath)

		name := strings.TrimPrefix(requestPath, "/")
		if name == "" {
			name = "."
		}

		file, err := staticFS.Open(name)
		if err != nil {
			// Unknown path: let the page's own router handle it
			return serveIndexHTML(c, staticFS)
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil {
			return serveIndexHTML(c, staticFS)
		}

		if stat.IsDir() {
			// Serve the directory's index.html, or the main one
			indexPath := strings.TrimPrefix(path.Join(requestPath, "index.html"), "/")
			if content, err := fs.ReadFile(staticFS, indexPath); err == nil {
				return c.HTMLBlob(http.StatusOK, content)
			}
			return serveIndexHTML(c, staticFS)
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	}

	if basePath != "" {
		e.GET(basePath, handler)
	}
	e.GET(basePath+"/*", handler)
}

// serveIndexHTML serves the main index.html
func serveIndexHTML(c echo.Context, staticFS fs.FS) error {
	content, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "index.html not found")
	}

	return c.HTMLBlob(http.StatusOK, content)
}

// HasIndex reports whether staticFS contains an index.html.
func HasIndex(staticFS fs.FS) bool {
	_, err := fs.Stat(staticFS, "index.html")
	return err == nil
}
