package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/negroni"
	"go.uber.org/zap"
)

// httpError is an error with the status code it should be reported with.
type httpError struct {
	Code int
	Err  error
}

func (e *httpError) Error() string {
	return e.Err.Error()
}

func (e *httpError) Unwrap() error {
	return e.Err
}

func errBadGateway(err error) error {
	return &httpError{Code: http.StatusBadGateway, Err: err}
}

func errInternal(err error) error {
	return &httpError{Code: http.StatusInternalServerError, Err: err}
}

// handlerFunc is an http.HandlerFunc that reports failure instead of
// writing an error response itself.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (app *App) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		code := http.StatusInternalServerError
		var hErr *httpError
		if errors.As(err, &hErr) {
			code = hErr.Code
		}

		app.Log.Error("error while handling request",
			zap.String("path", r.URL.Path),
			zap.Int("status", code),
			zap.Error(err))

		writeErr(w, code, err.Error())
	}
}

func writeErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf("%d - %s", code, message)))
}

func requestLogger(log *zap.Logger) negroni.HandlerFunc {
	return negroni.HandlerFunc(func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		start := time.Now()

		next(w, r)

		status := http.StatusOK
		if rw, ok := w.(negroni.ResponseWriter); ok && rw.Status() != 0 {
			status = rw.Status()
		}

		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
