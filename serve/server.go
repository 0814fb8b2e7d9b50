// Package serve implements the codelet daemon: a Unix domain socket server
// that answers newline-delimited JSON completion, inspect, warm and config
// requests.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Paranoid-AF/codelet"
	defaults "github.com/Paranoid-AF/codelet/default"
	"github.com/Paranoid-AF/codelet/generate"
)

// Request types carried in the "type" field.
const (
	typeInspect = "inspect"
	typeWarm    = "warm"
)

// maxRequestBytes bounds one request line; it carries the whole buffer.
const maxRequestBytes = 16 << 20

// Completer processes completion and inspect requests.
type Completer interface {
	Complete(ctx context.Context, req *codelet.Request) *codelet.Response
	Inspect(ctx context.Context, req *codelet.Request) (*codelet.ContextRecord, string, error)
	WarmProject(ctx context.Context, root string)
	Close()
}

// sessionEntry tracks the in-flight request of a session.
type sessionEntry struct {
	requestID int
	cancel    context.CancelFunc
	done      chan struct{}
}

// Server listens on a Unix domain socket for completion requests.
type Server struct {
	listener net.Listener
	sockPath string

	// newEngine builds the replacement engine on reload.
	newEngine func() Completer
	watcher   *configWatcher

	mu       sync.Mutex
	engine   Completer
	sessions map[string]sessionEntry
	closed   bool
}

// NewServer creates a new IPC server bound to the given socket path, backed
// by an engine built from the user's config.
func NewServer(sockPath string) (*Server, error) {
	return NewServerWithCompleter(sockPath, generate.NewEngine())
}

// NewServerWithCompleter creates a new IPC server with a custom Completer.
func NewServerWithCompleter(sockPath string, completer Completer) (*Server, error) {
	// Remove stale socket file if it exists
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener:  listener,
		sockPath:  sockPath,
		newEngine: func() Completer { return generate.NewEngine() },
		engine:    completer,
		sessions:  make(map[string]sessionEntry),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.sockPath
}

// Serve accepts connections and handles requests. It returns nil once the
// server is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Close shuts down the server, the engine and the config watcher, and
// removes the socket file.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	engine, watcher := s.engine, s.watcher
	for _, entry := range s.sessions {
		entry.cancel()
	}
	s.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	s.listener.Close()
	if engine != nil {
		engine.Close()
	}
	os.Remove(s.sockPath)
}

// current returns the engine serving new requests.
func (s *Server) current() Completer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// envelope holds the fields that select how a line is handled.
type envelope struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	log := slog.With("conn", uuid.NewString()[:8])

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			log.Warn("read request", "error", err)
		}
		return
	}

	raw := scanner.Bytes()
	log.Debug("request", "bytes", len(raw))

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn("invalid request", "error", err)
		return
	}

	switch {
	case env.Type == typeWarm:
		var req codelet.WarmRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Warn("invalid warm request", "error", err)
			return
		}
		s.handleWarmRequest(conn, log, &req)

	case env.Action != "":
		var req codelet.ConfigRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Warn("invalid config request", "error", err)
			return
		}
		s.handleConfigRequest(conn, log, &req)

	case env.Type == typeInspect:
		var req codelet.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Warn("invalid inspect request", "error", err)
			return
		}
		s.handleInspectRequest(conn, log, &req)

	case env.Type == "":
		var req codelet.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Warn("invalid request", "error", err)
			return
		}
		s.handleCompleteRequest(conn, log, &req)

	default:
		writeJSON(conn, log, &codelet.Response{
			Error: &codelet.Error{
				Code:    codelet.ErrCodeInvalidRequest,
				Message: "unknown request type: " + env.Type,
			},
		})
	}
}

func (s *Server) handleCompleteRequest(conn net.Conn, log *slog.Logger, req *codelet.Request) {
	start := time.Now()
	requestsInFlight.Inc()
	defer requestsInFlight.Dec()

	// Cancel the in-flight request of this session, then wait for it to
	// finish so context builds for one session never overlap.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sid := req.SessionID
	reqID := req.RequestID

	var prev *sessionEntry
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	if sid != "" {
		if p, ok := s.sessions[sid]; ok {
			p.cancel()
			prev = &p
		}
		s.sessions[sid] = sessionEntry{requestID: reqID, cancel: cancel, done: done}
	}
	s.mu.Unlock()

	defer func() {
		cancel()
		close(done)
		if sid != "" {
			s.mu.Lock()
			if cur, ok := s.sessions[sid]; ok && cur.requestID == reqID && cur.done == done {
				delete(s.sessions, sid)
			}
			s.mu.Unlock()
		}
	}()

	if prev != nil {
		log.Debug("cancelling previous request", "session", sid, "request_id", prev.requestID)
		<-prev.done
	}

	var resp *codelet.Response
	if ctx.Err() == nil {
		resp = s.current().Complete(ctx, req)
	}

	// If cancelled, skip writing; the client has already moved on.
	if ctx.Err() != nil || resp == nil {
		observeRequest("complete", "cancelled", start)
		log.Debug("request cancelled", "session", sid, "request_id", reqID)
		return
	}

	resp.RequestID = reqID
	if resp.Error != nil && resp.Error.Code == codelet.ErrCodeCancelled {
		observeRequest("complete", "cancelled", start)
		return
	}
	observeRequest("complete", outcome(resp), start)
	writeJSON(conn, log, resp)
}

func (s *Server) handleInspectRequest(conn net.Conn, log *slog.Logger, req *codelet.Request) {
	start := time.Now()
	resp := codelet.InspectResponse{RequestID: req.RequestID}

	rec, text, err := s.current().Inspect(context.Background(), req)
	if err != nil {
		resp.Error = &codelet.Error{Code: codelet.ErrCodeContext, Message: err.Error()}
		observeRequest("inspect", codelet.ErrCodeContext, start)
	} else {
		resp.Context = rec
		resp.Prompt = text
		observeRequest("inspect", "ok", start)
	}
	writeJSON(conn, log, &resp)
}

func (s *Server) handleWarmRequest(conn net.Conn, log *slog.Logger, req *codelet.WarmRequest) {
	resp := codelet.WarmResponse{OK: true}

	root := strings.TrimSpace(req.ProjectRoot)
	if root == "" {
		resp.OK = false
		resp.Error = &codelet.Error{Code: codelet.ErrCodeInvalidRequest, Message: "project_root is required"}
	} else {
		// Gather in background; respond immediately.
		go s.current().WarmProject(context.Background(), root)
	}
	writeJSON(conn, log, &resp)
}

func (s *Server) handleConfigRequest(conn net.Conn, log *slog.Logger, req *codelet.ConfigRequest) {
	var resp codelet.ConfigResponse

	switch req.Action {
	case "get":
		cfg, err := codelet.LoadConfig()
		if err != nil {
			resp.Error = configError(err)
		} else {
			resp.Config = cfg
		}

	case "reload":
		s.reloadEngine()
		cfg, err := codelet.LoadConfig()
		if err != nil {
			resp.Error = configError(err)
		} else {
			resp.Config = cfg
		}

	case "defaults":
		resp.Config = codelet.DefaultConfig()

	case "default_prompt":
		resp.Prompt = defaults.DefaultPrompt

	case "validate":
		cfg, err := codelet.LoadConfig()
		if err != nil {
			resp.Error = configError(err)
		} else {
			resp.Warnings = codelet.ValidateConfig(cfg)
		}

	default:
		resp.Error = &codelet.Error{
			Code:    codelet.ErrCodeUnknownAction,
			Message: "unknown config action: " + req.Action,
		}
	}

	writeJSON(conn, log, &resp)
}

// reloadEngine swaps in an engine built from the current config files.
// Requests already running finish on the old engine.
func (s *Server) reloadEngine() {
	engine := s.newEngine()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		engine.Close()
		return
	}
	old := s.engine
	s.engine = engine
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	configReloads.Inc()
	slog.Info("engine reloaded")
}

func configError(err error) *codelet.Error {
	return &codelet.Error{Code: codelet.ErrCodeConfig, Message: err.Error()}
}

func writeJSON(conn net.Conn, log *slog.Logger, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to marshal response", "error", err)
		return
	}

	log.Debug("response", "data", string(data))

	if _, err := conn.Write(append(data, '\n')); err != nil {
		log.Debug("write response", "error", err)
	}
}
