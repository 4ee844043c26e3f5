// Package lsp serves arrangement as document formatting over the Language
// Server Protocol.
package lsp

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/arrange/arrange"
	"github.com/dhamidi/arrange/config"
	"github.com/dhamidi/arrange/lang"
)

const lsName = "arrange"

var log = commonlog.GetLogger("arrange.lsp")

type Server struct {
	cfg      *config.Configuration
	arranger *arrange.Arranger
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu   sync.Mutex
	docs map[string]string
}

func NewServer(version string, cfg *config.Configuration) (*Server, error) {
	a, err := arrange.New(cfg)
	if err != nil {
		return nil, err
	}
	ls := &Server{
		cfg:      cfg,
		arranger: a,
		version:  version,
		docs:     map[string]string{},
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentFormatting: ls.textDocumentFormatting,
	}
	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls, nil
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.docs[params.TextDocument.URI] = params.TextDocument.Text
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.docs[params.TextDocument.URI] = whole.Text
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	delete(ls.docs, params.TextDocument.URI)
	return nil
}

// textDocumentFormatting replaces the whole document with its arranged
// text. Unchanged documents and files no handler accepts get no edits.
func (ls *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := params.TextDocument.URI
	ls.mu.Lock()
	text, ok := ls.docs[uri]
	ls.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("document not open: %s", uri)
	}

	path := uriToPath(uri)
	l, err := lang.ForFile(ls.cfg, path)
	if err != nil {
		log.Debugf("not formatting %s: %s", path, err)
		return nil, nil
	}
	out, err := l.Arrange(ls.arranger, ls.cfg.Formatting, path, []byte(text))
	if err != nil {
		log.Errorf("%s", err)
		return nil, err
	}
	if string(out) == text {
		return []protocol.TextEdit{}, nil
	}
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   endPosition(text),
		},
		NewText: string(out),
	}}, nil
}

// endPosition is the position just past the last character of text, with
// characters counted in UTF-16 code units.
func endPosition(text string) protocol.Position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndex(text, "\n")+1:]
	n := 0
	for _, r := range last {
		if r >= 0x10000 && r <= utf8.MaxRune {
			n += 2
		} else {
			n++
		}
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(n)}
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			return parsed.Path
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
