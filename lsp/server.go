// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for Ceylon
// sources.  It publishes type checker and lint diagnostics and answers
// hover, definition, references, completion and document symbol requests
// from the analysis of the whole workspace.
package lsp

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/lint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "ceylon-spec-lsp"

// Version is reported to clients in the initialize response.
var Version = "0.1.0"

// Server is the Ceylon language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string
	log      *logrus.Logger

	// base is the file system the workspace is read from.  Open documents
	// are written to overlay, which shadows base.
	base    afero.Fs
	overlay afero.Fs
	fs      afero.Fs

	analysisOpts []analysis.Option

	// result caches the analysis of the workspace until a document
	// changes.
	resultMu sync.Mutex
	result   *analysis.Result
	dirty    bool

	// Linter instance shared across diagnostics runs.
	linter *lint.Linter

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithFs sets the file system the workspace root is read from.  It
// defaults to the operating system's.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.base = fs }
}

// WithAnalysisOptions configures every analysis the server runs.
func WithAnalysisOptions(opts ...analysis.Option) Option {
	return func(s *Server) { s.analysisOpts = append(s.analysisOpts, opts...) }
}

// WithLinter replaces the default set of lint checks.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) { s.linter = l }
}

// WithLogger sets the server's logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a new language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		linter:   &lint.Linter{Analyzers: lint.DefaultAnalyzers()},
		base:     afero.NewOsFs(),
		overlay:  afero.NewMemMapFs(),
		dirty:    true,
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.fs = s.overlay

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.setRoot(s.rootPath)

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &Version,
		},
	}, nil
}

// setRoot layers the open documents over the workspace root.  Without a
// root only open documents are analyzed.
func (s *Server) setRoot(root string) {
	s.resultMu.Lock()
	defer s.resultMu.Unlock()
	if root == "" {
		s.fs = s.overlay
	} else {
		base := afero.NewReadOnlyFs(afero.NewBasePathFs(s.base, root))
		s.fs = afero.NewCopyOnWriteFs(base, s.overlay)
	}
	s.dirty = true
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(ctx *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// invalidate marks the cached analysis stale.
func (s *Server) invalidate() {
	s.resultMu.Lock()
	s.dirty = true
	s.resultMu.Unlock()
}

// workspace returns the analysis of the workspace, rebuilding it when a
// document changed since the last run.  A nil result means the workspace
// could not be analyzed at all.
func (s *Server) workspace() *analysis.Result {
	s.resultMu.Lock()
	defer s.resultMu.Unlock()
	if !s.dirty {
		return s.result
	}
	s.dirty = false
	r, err := s.analyze()
	if err != nil {
		s.log.WithError(err).Warn("workspace analysis failed")
	}
	if r != nil {
		s.result = r
	}
	return s.result
}

func (s *Server) analyze() (*analysis.Result, error) {
	opts := append([]analysis.Option{analysis.WithLogger(s.log)}, s.analysisOpts...)
	c, err := analysis.NewContext(opts...)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	loadErr := c.LoadTree(ctx, s.fs, "/")
	r, err := c.Run(ctx)
	if err != nil {
		return nil, err
	}
	return r, loadErr
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

// unitFor returns the open document at uri with the analysis of its unit.
// The unit is nil when the document is unknown or stopped before its names
// were resolved.
func (s *Server) unitFor(uri string) (*Document, *analysis.Result, *analysis.PhasedUnit) {
	doc := s.docs.Get(uri)
	if doc == nil {
		return nil, nil, nil
	}
	r := s.workspace()
	if r == nil {
		return doc, nil, nil
	}
	pu := r.Unit(doc.Path)
	if pu == nil || pu.Failed() || pu.Phase < analysis.PhaseNamesResolved {
		return doc, r, nil
	}
	return doc, r, pu
}

func boolPtr(b bool) *bool {
	return &b
}
