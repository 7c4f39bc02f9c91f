package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smhanov/redraft"
	"github.com/smhanov/redraft/config"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Starts an HTTP server exposing the pipeline:

    POST /v1/research   {"query": "..."} -> full pipeline state as JSON
    GET  /healthz       liveness probe
    GET  /metrics       prometheus metrics

Each request runs an independent pipeline instance. Shuts down gracefully
on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
}

// pipelineRunner is what the handler needs from a pipeline; tests stub it.
type pipelineRunner interface {
	Run(ctx context.Context, query string) (redraft.State, error)
}

type researchRequest struct {
	Query string `json:"query"`
}

type researchResponse struct {
	RunID          string                 `json:"run_id"`
	Query          string                 `json:"query"`
	SearchResults  []redraft.SearchResult `json:"search_results"`
	DraftAnswer    string                 `json:"draft_answer"`
	ReviewFeedback string                 `json:"review_feedback"`
	FinalAnswer    string                 `json:"final_answer"`
	DegradedStages []string               `json:"degraded_stages,omitempty"`
	CostUSD        float64                `json:"cost_usd"`
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	// The server always logs; --verbose only raises the detail.
	logger, err := zap.NewProduction()
	if flagVerbose {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	defer logger.Sync()

	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	addr := flagListen
	if addr == "" {
		addr = cfg.ListenAddr
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/v1/research", handleResearch(pipeline, logger)).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func handleResearch(pipeline pipelineRunner, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		st, err := pipeline.Run(r.Context(), req.Query)
		if err != nil {
			// Only configuration problems reach here (e.g. empty query).
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := researchResponse{
			RunID:          st.RunID,
			Query:          st.Query,
			SearchResults:  st.SearchResults,
			DraftAnswer:    st.DraftAnswer,
			ReviewFeedback: st.ReviewFeedback,
			FinalAnswer:    st.FinalAnswer,
			CostUSD:        st.Cost,
		}
		for _, f := range st.Faults {
			resp.DegradedStages = append(resp.DegradedStages, string(f.Stage))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn("write response", zap.Error(err))
		}
	}
}
