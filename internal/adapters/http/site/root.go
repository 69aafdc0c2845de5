// Package site serves the embedded forecast dashboard.
package site

import (
	"context"
	"net/http"
)

// Register attaches the dashboard to the root of mux. Paths that no other
// route claims fall through to the embedded files and 404 when absent.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
