// Package web embeds the browser UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler serves the UI files. Mount it with the /ui prefix stripped.
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// static is compiled in, a failure here is a build problem
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
