// Copyright © 2024 The ELPS authors

package lsp

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	URI     string
	Version int32
	Content string
	// Path is the slash separated path of the document relative to the
	// workspace root.  It names the document's unit in the analysis.
	Path string
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store.
func (s *DocumentStore) Open(uri, rel string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
		Path:    rel,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change replaces a document's content (full sync).  Unknown documents are
// ignored.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil
	}
	next := *doc
	next.Version = version
	next.Content = content
	s.docs[uri] = &next
	return &next
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[uri]
	delete(s.docs, uri)
	return doc
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// ByPath returns the open document for a workspace relative path, or nil.
func (s *DocumentStore) ByPath(rel string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Path == rel {
			return doc
		}
	}
	return nil
}

// All returns the open documents ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}

// relPath maps a document URI to its path relative to the workspace root.
// Documents outside the root are analyzed at the top level under their
// base name.
func (s *Server) relPath(uri string) string {
	p := uriToPath(uri)
	if s.rootPath != "" {
		if rel, err := filepath.Rel(s.rootPath, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return path.Base(filepath.ToSlash(p))
}

// uriFor maps a workspace relative path back to a document URI.
func (s *Server) uriFor(rel string) string {
	if doc := s.docs.ByPath(rel); doc != nil {
		return doc.URI
	}
	if s.rootPath == "" {
		return rel
	}
	return pathToURI(filepath.Join(s.rootPath, filepath.FromSlash(rel)))
}

// writeOverlay stores the content of doc where the analysis reads it.
func (s *Server) writeOverlay(doc *Document) {
	name := "/" + doc.Path
	if err := s.overlay.MkdirAll(path.Dir(name), 0o755); err != nil {
		s.log.WithError(err).Warn("overlay")
		return
	}
	if err := afero.WriteFile(s.overlay, name, []byte(doc.Content), 0o644); err != nil {
		s.log.WithError(err).Warn("overlay")
	}
	s.invalidate()
}

// removeOverlay drops doc from the overlay so the saved file, if any, is
// analyzed again.
func (s *Server) removeOverlay(doc *Document) {
	if err := s.overlay.Remove("/" + doc.Path); err != nil {
		s.log.WithError(err).Debug("overlay")
	}
	s.invalidate()
}
