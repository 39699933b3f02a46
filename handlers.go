package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// HandleLinks writes the link list as a JSON array.
func (app *App) HandleLinks(w http.ResponseWriter, r *http.Request) error {
	links := app.Data.Links
	if links == nil {
		links = []Link{}
	}

	b, err := app.encode(links)
	if err != nil {
		return errInternal(fmt.Errorf("error while encoding links: %w", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
	return nil
}

func (app *App) encode(v interface{}) ([]byte, error) {
	if app.Marshal != nil {
		return app.Marshal(v)
	}
	return json.Marshal(v)
}

// HandlePage streams the upstream template through the page rewriter.
func (app *App) HandlePage(w http.ResponseWriter, r *http.Request) error {
	body, err := app.Upstream.Fetch(r.Context())
	if err != nil {
		return errBadGateway(err)
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.WriteHeader(http.StatusOK)

	// The status is already out, a failure here can only cut the page short.
	if err := app.Rewriter.Transform(w, body); err != nil {
		app.Log.Warn("error while rewriting page", zap.String("path", r.URL.Path), zap.Error(err))
	}

	return nil
}
