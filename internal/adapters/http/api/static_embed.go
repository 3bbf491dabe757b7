package api

import (
	"embed"
	"io/fs"
)

//go:embed static/dashboard.html
var dashboardFiles embed.FS

// dashboardFS serves dashboard.html from the package root.
var dashboardFS = mustSub(dashboardFiles, "static")

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("api: embedded " + dir + " missing: " + err.Error())
	}
	return sub
}
