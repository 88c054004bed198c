package web

import "embed"

//go:embed templates/*.html
var Content embed.FS
