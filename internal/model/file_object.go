package model

import (
	"crypto/sha1"
	"encoding/hex"
)

type FileObject interface {
	GetFilename() string
	GetParent() string
	GetContent() []byte
}

// PageSnapshot is a raw page body kept for later re-extraction.
type PageSnapshot struct {
	URL     string
	Kind    PageKind
	Content []byte
}

func (p PageSnapshot) GetFilename() string {
	sum := sha1.Sum([]byte(p.URL))
	return hex.EncodeToString(sum[:]) + ".html"
}

func (p PageSnapshot) GetParent() string {
	return string(p.Kind)
}

func (p PageSnapshot) GetContent() []byte {
	return p.Content
}
