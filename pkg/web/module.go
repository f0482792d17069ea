// Package web serves the receiver's status page.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates
var templateFiles embed.FS

var home = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

type pageData struct {
	LinkPath  string
	Connected bool
}

// Site redirects / to /home and renders the status page there. connected
// may be nil.
func Site(linkPath string, connected func() bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/home", http.StatusTemporaryRedirect)
	})

	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		data := pageData{LinkPath: linkPath}
		if connected != nil {
			data.Connected = connected()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := home.Execute(w, data); err != nil {
			log.Error().Err(err).Msg("failed to render home page")
		}
	})

	return mux
}
