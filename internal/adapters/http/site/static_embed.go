package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/index.html
var pages embed.FS

// FS returns the landing page files rooted at static/.
func FS() http.FileSystem {
	sub, err := fs.Sub(pages, "static")
	if err != nil {
		panic("site: embedded static missing: " + err.Error())
	}
	return http.FS(sub)
}
