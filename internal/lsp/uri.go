package lsp

import (
	"path/filepath"
	"strings"
)

// URIToPath converts a file:// URI to a file system path. Other URIs are
// returned unchanged.
func URIToPath(uri string) string {
	after, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	// file:///C:/path on Windows
	if len(after) > 2 && after[0] == '/' && after[2] == ':' {
		after = after[1:]
	}
	return filepath.FromSlash(after)
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	path = filepath.ToSlash(path)
	if len(path) > 1 && path[1] == ':' {
		return "file:///" + path
	}
	return "file://" + path
}
