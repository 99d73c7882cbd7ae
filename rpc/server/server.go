package server

import (
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/ValentinKolb/dDocs/rpc/serializer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"net/http"
	"sync"
	"time"
)

var Logger = logger.GetLogger("server")

// credentialHeader mirrors the header the client channel sends
const credentialHeader = "X-DDocs-Credential"

// defaultHiLoCapacity is handed out when neither the server config nor the
// request specify a range size
const defaultHiLoCapacity = 32

// NewServer creates a new in-memory document server. Databases are created
// implicitly on first access; all state is lost when the process exits.
func NewServer(config common.ServerConfig) *Server {
	return &Server{
		config:    config,
		databases: xsync.NewMapOf[string, *database](),
		handled:   metrics.GetOrCreateCounter(`ddocs_server_requests_total`),
	}
}

// Server is an in-memory implementation of the document service. It is meant
// for development and tests, not for production use.
type Server struct {
	config    common.ServerConfig
	databases *xsync.MapOf[string, *database]
	handled   *metrics.Counter
}

// database holds the documents and identifier ranges of one logical database
type database struct {
	docs   *xsync.MapOf[string, storedDocument]
	ranges *xsync.MapOf[string, *rangeState]
}

// storedDocument is a document plus the collection it was stored under
type storedDocument struct {
	data       []byte
	collection string
}

// rangeState tracks the next free identifier of one collection.
// Range reservation and return are serialized per collection.
type rangeState struct {
	mu   sync.Mutex
	next uint64
}

// --------------------------------------------------------------------------
// HTTP surface
// --------------------------------------------------------------------------

// Handler returns the HTTP handler of the server. Exposed separately from
// Serve so tests can mount it on an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.config.LogLevel == "debug" {
		mux.HandleFunc("POST /dbs/{database}", loggerMiddleware(s.handleRequest))
	} else {
		mux.HandleFunc("POST /dbs/{database}", s.handleRequest)
	}

	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return mux
}

// Serve starts the HTTP server and blocks
func (s *Server) Serve() error {
	Logger.Infof("Starting document server on %s", s.config.Endpoint)
	return http.ListenAndServe(s.config.Endpoint, s.Handler())
}

// handleRequest decodes one protocol message, dispatches it and writes the
// response in the same wire format the client used
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	s.handled.Inc()

	// Check the credential before touching any state
	if s.config.Credential != "" && r.Header.Get(credentialHeader) != s.config.Credential {
		http.Error(w, "invalid credential", http.StatusUnauthorized)
		return
	}

	// Resolve the serializer from the content type
	ser := serializer.ForContentType(r.Header.Get("Content-Type"))
	if ser == nil {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	// Read request body
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	req := &common.Message{}
	if err := ser.Deserialize(body, req); err != nil {
		http.Error(w, fmt.Sprintf("invalid message: %v", err), http.StatusBadRequest)
		return
	}

	// Dispatch against the addressed database
	db := s.getDatabase(r.PathValue("database"))
	resp := s.dispatch(db, req)

	respBytes, err := ser.Serialize(*resp)
	if err != nil {
		http.Error(w, "Failed to serialize response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ser.ContentType())
	if _, err = w.Write(respBytes); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// --------------------------------------------------------------------------
// Message dispatch
// --------------------------------------------------------------------------

// dispatch executes one request against a database
func (s *Server) dispatch(db *database, req *common.Message) *common.Message {
	switch req.MsgType {
	case common.MsgTDocPut:
		db.docs.Store(req.ID, storedDocument{data: req.Document, collection: req.Collection})
		return common.NewPutResponse(nil)

	case common.MsgTDocGet:
		doc, ok := db.docs.Load(req.ID)
		return common.NewGetResponse(doc.data, ok, nil)

	case common.MsgTDocDelete:
		_, ok := db.docs.LoadAndDelete(req.ID)
		return common.NewDeleteResponse(ok, nil)

	case common.MsgTDocHas:
		_, ok := db.docs.Load(req.ID)
		return common.NewHasResponse(ok, nil)

	case common.MsgTHiLoNext:
		lo, hi := db.nextRange(req.Collection, s.rangeCapacity(req.Amount))
		return common.NewHiLoNextResponse(lo, hi, nil)

	case common.MsgTHiLoReturn:
		ok := db.returnRange(req.Collection, req.Last, req.Hi)
		return common.NewHiLoReturnResponse(ok, nil)

	case common.MsgTStats:
		meta := []byte(fmt.Sprintf(`{"documents":%d}`, db.docs.Size()))
		return common.NewStatsResponse(meta, nil)

	case common.MsgTPing:
		return common.NewPingResponse(nil)

	default:
		return common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", req.MsgType))
	}
}

// rangeCapacity resolves the effective range size for a HiLoNext request
func (s *Server) rangeCapacity(requested uint64) uint64 {
	if requested > 0 {
		return requested
	}
	if s.config.HiLoCapacity > 0 {
		return s.config.HiLoCapacity
	}
	return defaultHiLoCapacity
}

// getDatabase returns the database for a name, creating it on first access
func (s *Server) getDatabase(name string) *database {
	db, _ := s.databases.LoadOrCompute(name, func() *database {
		Logger.Infof("Creating database %q", name)
		return &database{
			docs:   xsync.NewMapOf[string, storedDocument](),
			ranges: xsync.NewMapOf[string, *rangeState](),
		}
	})
	return db
}

// nextRange reserves the next identifier range [lo, hi] for a collection
func (db *database) nextRange(collection string, capacity uint64) (uint64, uint64) {
	state, _ := db.ranges.LoadOrCompute(collection, func() *rangeState {
		return &rangeState{next: 1}
	})

	state.mu.Lock()
	defer state.mu.Unlock()

	lo := state.next
	hi := lo + capacity - 1
	state.next = hi + 1
	return lo, hi
}

// returnRange gives the unused tail of the most recently reserved range back.
// Returns false when the range is not the most recent one; the ids are then
// simply lost, which the Hi-Lo scheme tolerates.
func (db *database) returnRange(collection string, last, hi uint64) bool {
	state, ok := db.ranges.Load(collection)
	if !ok {
		return false
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.next != hi+1 {
		return false
	}
	state.next = last + 1
	return true
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Process request
		next.ServeHTTP(rw, r)

		// Log the request
		duration := time.Since(start)
		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, duration)
	}
}
