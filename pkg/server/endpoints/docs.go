package endpoints

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/lanbitou/lanbitou-in-go/docs"
	"github.com/lanbitou/lanbitou-in-go/pkg/server"
)

var renderDocs = sync.OnceValues(func() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width">
    <title>Lanbitou API</title>
    <style>
      body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
      code, pre { background: #f4f4f4; }
      pre { padding: 0.5rem; overflow-x: auto; }
    </style>
  </head>
  <body>
`)
	if err := md.Convert(docs.APIReference, &buf); err != nil {
		return nil, err
	}
	buf.WriteString("\n  </body>\n</html>\n")
	return buf.Bytes(), nil
})

// RegisterDocsEndpoint registers the rendered API reference (no auth
// required)
func RegisterDocsEndpoint(s *server.Server) {
	s.Router.HandleFunc("/docs", handleDocs()).Methods("GET")
}

func handleDocs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html, err := renderDocs()
		if err != nil {
			respondWithMessage(w, http.StatusInternalServerError, "Failed to render documentation")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(html)
	}
}
