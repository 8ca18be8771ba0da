package server

import (
	"LendAuction/internal/ingestion"
	"LendAuction/internal/observability"
	"LendAuction/internal/projection"
	"LendAuction/internal/query"
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer serves the read API, health probes and Prometheus metrics.
// Queries read projection tables only; submissions go through NATS, not
// this server.
type HTTPServer struct {
	httpServer    *http.Server
	addr          string
	db            *sql.DB
	queryService  *query.Service
	ingestService *ingestion.GRPCIngestService
	healthChecker *observability.HealthChecker
	metrics       *observability.Metrics
}

func NewHTTPServer(
	addr string,
	db *sql.DB,
	queryService *query.Service,
	ingestService *ingestion.GRPCIngestService,
	healthChecker *observability.HealthChecker,
	metrics *observability.Metrics,
) *HTTPServer {
	return &HTTPServer{
		addr:          addr,
		db:            db,
		queryService:  queryService,
		ingestService: ingestService,
		healthChecker: healthChecker,
		metrics:       metrics,
	}
}

// Start runs the HTTP server (blocking).
func (s *HTTPServer) Start(ctx context.Context) error {
	r := mux.NewRouter()

	r.HandleFunc("/v1/registry", s.handleGetRegistry).Methods(http.MethodGet)
	r.HandleFunc("/v1/shards/{id:[0-9]+}/orders", s.handleGetShardOrders).Methods(http.MethodGet)
	r.HandleFunc("/v1/shards/{id:[0-9]+}/loans", s.handleGetShardLoans).Methods(http.MethodGet)
	r.HandleFunc("/v1/balances/{user}", s.handleGetBalances).Methods(http.MethodGet)
	r.HandleFunc("/v1/users/{user}/journal", s.handleGetJournal).Methods(http.MethodGet)
	r.HandleFunc("/v1/integrity", s.handleVerifyIntegrity).Methods(http.MethodGet)
	r.HandleFunc("/v1/admin/rebuild-projections", s.handleRebuildProjections).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/inject/deposit", s.handleInjectDeposit).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/inject/cleanup", s.handleInjectCleanup).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/inject/withdraw-fees", s.handleInjectWithdrawFees).Methods(http.MethodPost)

	r.HandleFunc("/healthz", s.healthChecker.LivenessHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.healthChecker.ReadinessHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("INFO: HTTP server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("INFO: HTTP server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reg, err := s.queryService.GetRegistry(r.Context())
	if err != nil {
		s.writeError(w, "registry", http.StatusInternalServerError, err)
		return
	}
	if reg == nil {
		s.writeJSONError(w, "registry", http.StatusNotFound, "not initialized")
		return
	}

	s.writeJSON(w, "registry", reg, start)
}

func (s *HTTPServer) handleGetShardOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	shardID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeJSONError(w, "shard_orders", http.StatusBadRequest, "invalid shard id")
		return
	}

	var side *string
	if v := r.URL.Query().Get("side"); v != "" {
		if v != "bid" && v != "ask" {
			s.writeJSONError(w, "shard_orders", http.StatusBadRequest, "side must be bid or ask")
			return
		}
		side = &v
	}

	orders, err := s.queryService.GetShardOrders(r.Context(), shardID, side)
	if err != nil {
		s.writeError(w, "shard_orders", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "shard_orders", map[string]interface{}{
		"shard_id": shardID,
		"orders":   orders,
	}, start)
}

func (s *HTTPServer) handleGetShardLoans(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	shardID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeJSONError(w, "shard_loans", http.StatusBadRequest, "invalid shard id")
		return
	}

	includeRepaid := r.URL.Query().Get("include_repaid") == "true"

	loans, err := s.queryService.GetShardLoans(r.Context(), shardID, includeRepaid)
	if err != nil {
		s.writeError(w, "shard_loans", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "shard_loans", map[string]interface{}{
		"shard_id": shardID,
		"loans":    loans,
	}, start)
}

func (s *HTTPServer) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(mux.Vars(r)["user"])
	if err != nil {
		s.writeJSONError(w, "balances", http.StatusBadRequest, "invalid user id")
		return
	}

	balances, err := s.queryService.GetBalances(r.Context(), userID)
	if err != nil {
		s.writeError(w, "balances", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "balances", map[string]interface{}{
		"user_id":  userID,
		"balances": balances,
	}, start)
}

func (s *HTTPServer) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(mux.Vars(r)["user"])
	if err != nil {
		s.writeJSONError(w, "journal", http.StatusBadRequest, "invalid user id")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var afterSeq *int64
	if v := r.URL.Query().Get("after_sequence"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			afterSeq = &n
		}
	}

	entries, err := s.queryService.GetJournalHistory(r.Context(), userID, limit, afterSeq)
	if err != nil {
		s.writeError(w, "journal", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "journal", map[string]interface{}{
		"user_id":  userID,
		"journals": entries,
	}, start)
}

func (s *HTTPServer) handleVerifyIntegrity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	report, err := s.queryService.VerifyIntegrity(r.Context())
	if err != nil {
		s.writeError(w, "integrity", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "integrity", report, start)
}

func (s *HTTPServer) handleRebuildProjections(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := projection.Rebuild(r.Context(), s.db); err != nil {
		s.writeError(w, "rebuild", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "rebuild", map[string]interface{}{"rebuilt": true}, start)
}

// --- admin injection ---
//
// Backfill surface for deposits and admin operations that normally
// arrive via NATS. Callers supply the source sequence so injected
// operations slot into partition ordering.

func (s *HTTPServer) handleInjectDeposit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		User           uuid.UUID `json:"user"`
		Asset          string    `json:"asset"`
		Amount         uint64    `json:"amount"`
		CurrentSlot    uint64    `json:"current_slot"`
		SourceSequence int64     `json:"source_sequence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, "inject_deposit", http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.ingestService.InjectDeposit(r.Context(), req.User, req.Asset, req.Amount, req.CurrentSlot, req.SourceSequence); err != nil {
		s.writeError(w, "inject_deposit", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "inject_deposit", map[string]interface{}{"accepted": true}, start)
}

func (s *HTTPServer) handleInjectCleanup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Caller         uuid.UUID `json:"caller"`
		ShardID        uint64    `json:"shard_id"`
		CurrentSlot    uint64    `json:"current_slot"`
		SourceSequence int64     `json:"source_sequence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, "inject_cleanup", http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.ingestService.InjectCleanup(r.Context(), req.Caller, req.ShardID, req.CurrentSlot, req.SourceSequence); err != nil {
		s.writeError(w, "inject_cleanup", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "inject_cleanup", map[string]interface{}{"accepted": true}, start)
}

func (s *HTTPServer) handleInjectWithdrawFees(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Caller         uuid.UUID `json:"caller"`
		ShardID        uint64    `json:"shard_id"`
		Asset          string    `json:"asset"`
		Amount         uint64    `json:"amount"`
		CurrentSlot    uint64    `json:"current_slot"`
		SourceSequence int64     `json:"source_sequence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, "inject_withdraw_fees", http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.ingestService.InjectWithdrawFees(r.Context(), req.Caller, req.ShardID, req.Asset, req.Amount, req.CurrentSlot, req.SourceSequence); err != nil {
		s.writeError(w, "inject_withdraw_fees", http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, "inject_withdraw_fees", map[string]interface{}{"accepted": true}, start)
}

// --- response helpers ---

func (s *HTTPServer) writeJSON(w http.ResponseWriter, endpoint string, v interface{}, start time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)

	if s.metrics != nil {
		s.metrics.QueryRequests.WithLabelValues(endpoint, "ok").Inc()
		s.metrics.QueryDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, endpoint string, code int, err error) {
	log.Printf("WARN: %s query failed: %v", endpoint, err)
	s.writeJSONError(w, endpoint, code, "internal error")
}

func (s *HTTPServer) writeJSONError(w http.ResponseWriter, endpoint string, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})

	if s.metrics != nil {
		s.metrics.QueryRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	}
}
