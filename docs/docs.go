// Package docs carries the API reference, embedded so the server can render
// it without a filesystem dependency.
package docs

import _ "embed"

//go:embed api.md
var APIReference []byte
