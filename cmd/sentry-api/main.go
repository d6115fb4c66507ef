package main

import (
	"NetSentry/internal/config"
	"NetSentry/internal/query"
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.ClickHouse.Enabled {
		log.Fatalf("ClickHouse is not enabled in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	r := mux.NewRouter()
	apiHandler := &APIHandler{querier: querier}
	r.HandleFunc("/api/v1/alerts", apiHandler.alertsHandler).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for the HTTP handlers.
type APIHandler struct {
	querier query.Querier
}

// alertsHandler serves recent alerts, filterable by src_ip, kind and
// since (RFC3339).
func (h *APIHandler) alertsHandler(w http.ResponseWriter, r *http.Request) {
	req := query.AlertsRequest{
		SrcIP: r.URL.Query().Get("src_ip"),
		Kind:  r.URL.Query().Get("kind"),
	}
	if s := r.URL.Query().Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, "invalid 'since' timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
		req.Since = since
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			http.Error(w, "invalid 'limit'", http.StatusBadRequest)
			return
		}
		req.Limit = limit
	}

	alerts, err := h.querier.RecentAlerts(r.Context(), req)
	if err != nil {
		log.Printf("Failed to query alerts: %v", err)
		http.Error(w, "failed to query alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(alerts); err != nil {
		log.Printf("Failed to encode alerts response: %v", err)
	}
}
