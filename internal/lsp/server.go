package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joeandaverde/vscode-tinypg/internal/engine"
	"github.com/joeandaverde/vscode-tinypg/internal/workspace"
	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// JSON-RPC error codes.
const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Options configures the server. Zero values fall back to engine and
// workspace defaults.
type Options struct {
	// Root is used when the client does not send a workspace root.
	Root        string
	Extension   string
	Exclude     []string
	KeyedCalls  []string
	InlineCalls []string
	Concurrency int
	Lint        *lint.Config
	// CheckOnChange re-checks on edits that touch a binding call.
	CheckOnChange bool
	// Watch re-checks open documents when .sql files change on disk.
	Watch   bool
	Version string
	Logger  *slog.Logger
}

// Server implements the Language Server Protocol for tinypg.
type Server struct {
	opts Options

	// Document management
	documents   *DocumentStore
	collections *Collections
	passes      *engine.Passes

	// Workspace, set up on initialize. setupMu serializes setup.
	setupMu   sync.Mutex
	mu        sync.RWMutex
	root      string
	index     *workspace.Index
	engine    *engine.Engine
	callLines map[string][]lineRange
	watchStop context.CancelFunc

	// Lifetime of background work
	ctx    context.Context
	cancel context.CancelFunc

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	// Logging
	logger *slog.Logger

	// Shutdown state
	shutdown   bool
	exited     bool
	shutdownMu sync.RWMutex
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		opts:        opts,
		documents:   NewDocumentStore(),
		collections: NewCollections(),
		passes:      engine.NewPasses(),
		callLines:   make(map[string][]lineRange),
		reader:      bufio.NewReader(reader),
		writer:      writer,
		logger:      logger,
	}
}

// Run processes JSON-RPC messages until the client disconnects or sends
// exit. Analysis passes still running when input ends are allowed to
// finish and publish before Run returns.
func (s *Server) Run(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer func() {
		s.stopWatch()
		s.passes.Wait()
		s.cancel()
	}()

	s.logger.Info("tinypg language server starting")

	for {
		if s.isExited() {
			return nil
		}
		if err := s.ctx.Err(); err != nil {
			return err
		}

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			s.logger.Error("error reading message", "error", err)
			continue
		}

		if err := s.handleMessage(msg); err != nil {
			s.logger.Error("error handling message", "method", msg.Method, "error", err)
		}
	}
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// readMessage reads a JSON-RPC message from the input stream.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	// Read headers
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}

		name, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			contentLength, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	// Read body
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	return &msg, nil
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}

	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}

	s.writeMessage(&msg)
}

// writeMessage writes a JSON-RPC message to the output stream.
func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("error marshaling message", "error", err)
		return
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	s.logger.Debug("received", "method", msg.Method)

	if s.isShutdown() && msg.Method != "exit" {
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidRequest, Message: "server is shut down"})
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	default:
		if msg.ID != nil {
			// Unknown method with ID - respond with method not found
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	root := s.opts.Root
	switch {
	case params.RootURI != "":
		root = URIToPath(params.RootURI)
	case len(params.WorkspaceFolders) > 0:
		root = URIToPath(params.WorkspaceFolders[0].URI)
	}
	if err := s.setup(root); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInternalError, Message: err.Error()})
		return err
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save: &SaveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "tinypg", Version: s.opts.Version},
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.logger.Info("server initialized", "root", s.workspaceRoot())

	index, _ := s.current()
	if index == nil {
		return nil
	}
	paths, err := index.Paths(s.ctx)
	if err != nil {
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeWarning,
			Message: fmt.Sprintf("Unable to scan %s for SQL files: %v", index.Root(), err),
		})
		return nil
	}
	if len(paths) == 0 {
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeInfo,
			Message: fmt.Sprintf("No %s files found under %s. Keyed calls will report missing targets.", index.Extension(), index.Root()),
		})
	}
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.stopWatch()
	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.exited = true
	s.shutdownMu.Unlock()
	s.logger.Info("server exit")
	return nil
}

func (s *Server) isShutdown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.shutdown
}

func (s *Server) isExited() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.exited
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if !supported(uri) {
		return nil
	}

	s.documents.Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.logger.Debug("opened", "uri", uri)

	s.check(uri)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if s.documents.Get(uri) == nil {
		return nil
	}

	s.documents.Close(uri)
	s.passes.End(uri)
	s.mu.Lock()
	delete(s.callLines, uri)
	s.mu.Unlock()
	s.logger.Debug("closed", "uri", uri)

	// Clear diagnostics
	s.collections.Clear(uri)
	s.publishDiagnostics(uri, nil)
	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// We use full sync, so take the last change
	lastChange := params.ContentChanges[len(params.ContentChanges)-1]
	prev, cur := s.documents.Update(params.TextDocument.URI, lastChange.Text, params.TextDocument.Version)
	if cur == nil || !s.opts.CheckOnChange {
		return nil
	}
	if s.touchesCall(prev, cur) {
		s.check(cur.URI)
	}
	return nil
}

func (s *Server) handleDidSave(msg *JSONRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	path := URIToPath(uri)
	s.logger.Debug("saved", "path", path)

	if index, _ := s.current(); index != nil && strings.EqualFold(filepath.Ext(path), index.Extension()) {
		index.Invalidate()
		s.checkAll()
		return nil
	}

	doc := s.documents.Get(uri)
	if doc == nil {
		return nil
	}
	if params.Text != nil && *params.Text != doc.Content {
		s.documents.Update(uri, *params.Text, doc.Version)
	}
	s.check(uri)
	return nil
}

// --- Workspace ---

// setup builds the index and engine for root and starts the watcher.
func (s *Server) setup(root string) error {
	s.setupMu.Lock()
	defer s.setupMu.Unlock()
	return s.setupLocked(root)
}

func (s *Server) setupLocked(root string) error {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}

	index := workspace.NewIndex(workspace.Options{
		Root:      root,
		Extension: s.opts.Extension,
		Exclude:   s.opts.Exclude,
		Logger:    s.logger,
	})
	eng, err := engine.New(engine.Config{
		Files:       index,
		Extension:   index.Extension(),
		KeyedCalls:  s.opts.KeyedCalls,
		InlineCalls: s.opts.InlineCalls,
		Concurrency: s.opts.Concurrency,
		Lint:        s.opts.Lint,
		Logger:      s.logger,
	})
	if err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}

	s.mu.Lock()
	s.root = root
	s.index = index
	s.engine = eng
	s.mu.Unlock()
	s.logger.Info("workspace root", "path", root)

	if s.opts.Watch {
		s.startWatch(root)
	}
	return nil
}

// current returns the workspace index and engine, setting them up from
// Options.Root when the client never sent initialize.
func (s *Server) current() (*workspace.Index, *engine.Engine) {
	s.mu.RLock()
	index, eng := s.index, s.engine
	s.mu.RUnlock()
	if eng != nil {
		return index, eng
	}

	s.setupMu.Lock()
	defer s.setupMu.Unlock()
	s.mu.RLock()
	eng = s.engine
	s.mu.RUnlock()
	if eng == nil {
		if err := s.setupLocked(s.opts.Root); err != nil {
			s.logger.Error("workspace setup failed", "error", err)
			return nil, nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, s.engine
}

func (s *Server) workspaceRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Server) startWatch(root string) {
	w, err := workspace.NewWatcher(workspace.Options{
		Root:      root,
		Extension: s.opts.Extension,
		Exclude:   s.opts.Exclude,
		Logger:    s.logger,
	})
	if err != nil {
		s.logger.Warn("file watching disabled", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.mu.Lock()
	if s.watchStop != nil {
		s.watchStop()
	}
	s.watchStop = cancel
	s.mu.Unlock()

	go func() {
		defer func() { _ = w.Close() }()
		_ = w.Run(ctx, s.onFilesChanged)
	}()
}

func (s *Server) stopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchStop != nil {
		s.watchStop()
		s.watchStop = nil
	}
}

func (s *Server) onFilesChanged(batch workspace.Batch) {
	if !batch.SQL {
		return
	}
	if index, _ := s.current(); index != nil {
		index.Invalidate()
	}
	s.checkAll()
}

func supported(uri string) bool {
	_, ok := jsast.LanguageForPath(URIToPath(uri))
	return ok
}
