package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"go.uber.org/zap"
)

// templateSource provides the HTML document the page is built from.
type templateSource interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

type App struct {
	Data     Page
	Upstream templateSource
	Rewriter *Rewriter
	Log      *zap.Logger

	// Marshal encodes the /links response; nil means encoding/json.
	Marshal func(v interface{}) ([]byte, error)
}

func NewApp(cfg Config, log *zap.Logger) (*App, error) {
	data := cfg.Page()
	data.Links = resolveLinkNames(data.Links, &http.Client{Timeout: cfg.UpstreamTimeout}, log)

	if err := data.Validate(); err != nil {
		return nil, err
	}

	rw, err := newPageRewriter(data)
	if err != nil {
		return nil, fmt.Errorf("error while building rewriter: %w", err)
	}

	return &App{
		Data:     data,
		Upstream: NewUpstream(cfg.UpstreamURL, cfg.UpstreamTimeout),
		Rewriter: rw,
		Log:      log,
	}, nil
}

// silentPanicFormatter writes nothing: a panic in HandlePage usually comes
// after the page headers, so any text would end up inside the HTML.
type silentPanicFormatter struct{}

func (silentPanicFormatter) FormatPanicError(http.ResponseWriter, *http.Request, *negroni.PanicInformation) {}

// Handler returns the app's routes wrapped in recovery and request logging.
func (app *App) Handler() http.Handler {
	r := mux.NewRouter()
	// Unclean paths are ordinary page requests, not redirects.
	r.SkipClean(true)
	r.Path("/links").HandlerFunc(app.handle(app.HandleLinks))
	r.PathPrefix("/").HandlerFunc(app.handle(app.HandlePage))

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = zap.NewStdLog(app.Log)
	recovery.Formatter = silentPanicFormatter{}

	n := negroni.New(recovery, requestLogger(app.Log))
	n.UseHandler(r)
	return n
}
