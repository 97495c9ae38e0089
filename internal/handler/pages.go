package handler

import (
	"embed"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

//go:embed web/*.html
var webFS embed.FS

// Pages serves the public page and the admin dashboard.  A file of the same
// name in Dir, when set, replaces the built-in page.
type Pages struct {
	Dir string
}

// Index handles GET /.
func (p Pages) Index(c echo.Context) error { return p.serve(c, "index.html") }

// Admin handles GET /admin.
func (p Pages) Admin(c echo.Context) error { return p.serve(c, "admin.html") }

func (p Pages) serve(c echo.Context, name string) error {
	if p.Dir != "" {
		path := filepath.Join(p.Dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return c.File(path)
		}
	}
	b, err := webFS.ReadFile("web/" + name)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "page not found"})
	}
	return c.HTMLBlob(http.StatusOK, b)
}
