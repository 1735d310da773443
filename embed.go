// Package liftline embeds the built frontend so the server ships as a
// single binary.
package liftline

import "embed"

//go:embed web/dist
var WebFS embed.FS
