package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	body string
	err  error
}

func (s stubSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func newTestApp(t *testing.T, p Page, src templateSource) *App {
	t.Helper()

	rw, err := newPageRewriter(p)
	require.NoError(t, err)

	return &App{
		Data:     p,
		Upstream: src,
		Rewriter: rw,
		Log:      zap.NewNop(),
	}
}

func TestApp_routes(t *testing.T) {
	gitHub := Page{
		Profile: testPage.Profile,
		Links:   []Link{{Name: "GitHub", URL: "https://github.com/bjma/"}},
	}

	testTable := []struct {
		name                string
		method              string
		path                string
		page                Page
		source              templateSource
		expectedStatusCode  int
		expectedContentType string
		expectedBody        string
	}{
		{
			name:                "links",
			method:              http.MethodGet,
			path:                "/links",
			page:                gitHub,
			source:              stubSource{err: errors.New("must not be called")},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "application/json",
			expectedBody:        `[{"name":"GitHub","url":"https://github.com/bjma/"}]`,
		},
		{
			name:                "links with no method check",
			method:              http.MethodPost,
			path:                "/links",
			page:                gitHub,
			source:              stubSource{err: errors.New("must not be called")},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "application/json",
			expectedBody:        `[{"name":"GitHub","url":"https://github.com/bjma/"}]`,
		},
		{
			name:                "empty links",
			method:              http.MethodGet,
			path:                "/links",
			page:                Page{Profile: testPage.Profile},
			source:              stubSource{},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "application/json",
			expectedBody:        `[]`,
		},
		{
			name:                "root page",
			method:              http.MethodGet,
			path:                "/",
			page:                gitHub,
			source:              stubSource{body: `<div id="links"></div>`},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "text/html;charset=UTF-8",
			expectedBody:        `<div id="links"><a href="https://github.com/bjma/">GitHub</a></div>`,
		},
		{
			name:                "any other path",
			method:              http.MethodDelete,
			path:                "/links/extra",
			page:                gitHub,
			source:              stubSource{body: `<p>template</p>`},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "text/html;charset=UTF-8",
			expectedBody:        `<p>template</p>`,
		},
		{
			name:                "double slash before links",
			method:              http.MethodGet,
			path:                "//links",
			page:                gitHub,
			source:              stubSource{body: `<p>template</p>`},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "text/html;charset=UTF-8",
			expectedBody:        `<p>template</p>`,
		},
		{
			name:                "unclean path",
			method:              http.MethodGet,
			path:                "/a//b",
			page:                gitHub,
			source:              stubSource{body: `<p>template</p>`},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "text/html;charset=UTF-8",
			expectedBody:        `<p>template</p>`,
		},
		{
			name:                "dot segments",
			method:              http.MethodGet,
			path:                "/x/../links",
			page:                gitHub,
			source:              stubSource{body: `<p>template</p>`},
			expectedStatusCode:  http.StatusOK,
			expectedContentType: "text/html;charset=UTF-8",
			expectedBody:        `<p>template</p>`,
		},
		{
			name:                "upstream failure",
			method:              http.MethodGet,
			path:                "/",
			page:                gitHub,
			source:              stubSource{err: errors.New("connection refused")},
			expectedStatusCode:  http.StatusBadGateway,
			expectedContentType: "text/plain; charset=utf-8",
			expectedBody:        "502 - connection refused",
		},
	}

	for _, tc := range testTable {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.page, tc.source)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, nil)

			app.Handler().ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatusCode, w.Code)
			assert.Equal(t, tc.expectedContentType, w.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestApp_linksRoundTrip(t *testing.T) {
	app := newTestApp(t, testPage, stubSource{})

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links", nil))

	var got []Link
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, testPage.Links, got)
}

func TestApp_linksEncodingFailure(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testPage, stubSource{})
	app.Marshal = func(v interface{}) ([]byte, error) {
		return nil, errors.New("unsupported value")
	}

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "500 - error while encoding links: unsupported value", w.Body.String())
}

func TestApp_upstreamOverHTTP(t *testing.T) {
	testTable := []struct {
		name               string
		handler            http.HandlerFunc
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "content type is replaced",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte(`<h1 id="name"></h1>`))
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `<h1 id="name">Brian Ma</h1>`,
		},
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			expectedStatusCode: http.StatusBadGateway,
			expectedBody:       "502 - unexpected upstream status: 500 Internal Server Error",
		},
	}

	for _, tc := range testTable {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			app := newTestApp(t, testPage, NewUpstream(srv.URL, time.Second))

			w := httptest.NewRecorder()
			app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.expectedStatusCode, w.Code)
			assert.Equal(t, tc.expectedBody, w.Body.String())
			if tc.expectedStatusCode == http.StatusOK {
				assert.Equal(t, "text/html;charset=UTF-8", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestApp_recoversFromPanics(t *testing.T) {
	app := newTestApp(t, testPage, stubSource{body: `<p>a</p><div id="links"></div>`})
	app.Rewriter = NewRewriter()
	require.NoError(t, app.Rewriter.On("div", func(*Element) { panic("handler bug") }))

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>a</p>", w.Body.String())
	assert.NotContains(t, w.Body.String(), "PANIC")
}

func TestNewApp(t *testing.T) {
	cfg, err := initConfig("")
	require.NoError(t, err)

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, cfg.Links, app.Data.Links)
	assert.Equal(t, cfg.UpstreamURL, app.Upstream.(*Upstream).URL)

	cfg.Profile.AvatarURL = "not a url"
	_, err = NewApp(cfg, zap.NewNop())
	assert.Error(t, err)
}
