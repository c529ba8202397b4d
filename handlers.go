package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aspire-opr/opr"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(svc *ratingService) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestMiddleware)

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/rankings", rankingsHandler(svc)).Methods(http.MethodGet)
	r.HandleFunc("/api/teams/{team}/history", teamHistoryHandler(svc)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func rankingsHandler(svc *ratingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.RankingsPage(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func teamHistoryHandler(svc *ratingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := strings.TrimSpace(mux.Vars(r)["team"])
		if team == "" {
			http.Error(w, "team required", http.StatusBadRequest)
			return
		}
		page, err := svc.TeamPage(r.Context(), team)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, opr.ErrUnderconstrained) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	log.Errorw("rating computation failed", "error", err)
	http.Error(w, "rating computation failed", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnw("encoding response failed", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestMiddleware logs each request and records it under its route template
// so team ids don't explode the label set.
func requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		latency := time.Since(start)
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(latency.Seconds())

		log.Infow("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", latency,
		)
	})
}
