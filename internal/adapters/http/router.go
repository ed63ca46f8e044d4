package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/core/ports"
	"github.com/kirillkom/outlet-assistant/internal/observability/metrics"
)

const (
	serviceName     = "api"
	maxChatBodySize = 64 << 10
)

type Router struct {
	cfg       config.Config
	chat      ports.ChatService
	directory ports.OutletDirectory
	exporter  ports.DirectoryExporter
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	chat ports.ChatService,
	directory ports.OutletDirectory,
	exporter ports.DirectoryExporter,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		chat:      chat,
		directory: directory,
		exporter:  exporter,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /outlets", rt.listOutlets)
	mux.HandleFunc("GET /outlets/export.xlsx", rt.exportOutlets)
	mux.HandleFunc("POST /chatbot", rt.chatbot)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIQueueWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = corsMiddleware(handler, rt.cfg.CORSAllowedOrigins)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = recoverMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Query string `json:"query"`
}

func (rt *Router) chatbot(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodySize))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	start := time.Now()
	answer, err := rt.chat.Answer(r.Context(), req.Query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChat(serviceName, metrics.ChatObservation{
			Intent:           string(answer.Intent),
			Records:          answer.Records,
			FellThrough:      answer.FellThrough,
			CompletionFailed: answer.CompletionFailed,
			Duration:         time.Since(start),
		})
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) listOutlets(w http.ResponseWriter, r *http.Request) {
	outlets, ok := rt.loadOutlets(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, outlets)
}

func (rt *Router) exportOutlets(w http.ResponseWriter, r *http.Request) {
	if rt.exporter == nil {
		writeError(w, http.StatusNotFound, "export is not enabled")
		return
	}
	outlets, ok := rt.loadOutlets(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := rt.exporter.WriteOutlets(&buf, outlets); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="outlets.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) loadOutlets(w http.ResponseWriter, r *http.Request) ([]domain.Outlet, bool) {
	outlets, err := rt.directory.ListOutlets(r.Context())
	if err != nil {
		if domain.IsKind(err, domain.ErrOutletNotFound) {
			writeError(w, http.StatusNotFound, "No outlets found")
			return nil, false
		}
		writeDomainError(w, r, err)
		return nil, false
	}
	return outlets, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

