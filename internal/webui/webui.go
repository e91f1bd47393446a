// Package webui embeds the single-page front end served by srmkit serve.
package webui

import (
	"embed"
	"errors"
	"io/fs"
	"mime"
	"path"
	"strings"
)

//go:embed static/*
var staticFS embed.FS

// ErrNoAsset is returned for names outside the embedded asset set.
var ErrNoAsset = errors.New("webui: no such asset")

// Asset is one embedded file with its content type.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// Lookup returns the embedded asset called name. Names are flat: anything
// carrying a directory component is rejected.
func Lookup(name string) (Asset, error) {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return Asset{}, ErrNoAsset
	}
	b, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Asset{}, ErrNoAsset
		}
		return Asset{}, err
	}
	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return Asset{Name: name, ContentType: ct, Data: b}, nil
}

// Index returns the converter page.
func Index() []byte {
	a, err := Lookup("index.html")
	if err != nil {
		panic(err)
	}
	return a.Data
}
