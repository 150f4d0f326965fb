// Package web embeds the static portfolio site.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:site
var embedded embed.FS

// Site returns the site root (index.html, 404.html, data/, assets/).
func Site() fs.FS {
	sub, err := fs.Sub(embedded, "site")
	if err != nil {
		panic(err)
	}
	return sub
}
