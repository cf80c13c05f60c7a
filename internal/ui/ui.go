// Package ui embeds the browser front end served at /.
package ui

import "embed"

// DistFS holds the built front end under dist/.
//
//go:embed dist
var DistFS embed.FS
