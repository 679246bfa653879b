package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/pipeline"
	"github.com/sells-group/forecast-cli/pkg/openrouter"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(p),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// runRequest is the POST /runs body. Zero values fall back to the
// configured defaults; Refresh of nil keeps the configured setting.
type runRequest struct {
	Brief       string `json:"brief"`
	Constraints string `json:"constraints"`
	Questions   int    `json:"questions"`
	Refresh     *bool  `json:"refresh"`
}

// exportRequest carries a final text to serialize.
type exportRequest struct {
	Final string `json:"final"`
}

func newRouter(p *pipeline.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
		var body runRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}

		// Each request runs against its own configuration copy so
		// concurrent runs never share mutable state.
		runCfg := *cfg
		if body.Questions > 0 {
			runCfg.Output.Questions = body.Questions
		}
		if body.Refresh != nil {
			runCfg.Output.Refresh = *body.Refresh
		}
		runPipeline := p.WithConfig(&runCfg)

		result, err := runPipeline.Run(req.Context(), model.Brief{
			Text:        body.Brief,
			Constraints: body.Constraints,
		})
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/export/csv", func(w http.ResponseWriter, req *http.Request) {
		handleExport(w, req, "csv", "text/csv", pipeline.ExportCSV)
	})

	r.Post("/export/xlsx", func(w http.ResponseWriter, req *http.Request) {
		handleExport(w, req, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", pipeline.ExportXLSX)
	})

	return r
}

func handleExport(w http.ResponseWriter, req *http.Request, ext, contentType string, export func(string) ([]byte, error)) {
	var body exportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}

	data, err := export(body.Final)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.ExportFilename(ext)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// statusForError maps the pipeline error taxonomy onto HTTP statuses:
// validation problems are the caller's fault, upstream and transport
// failures surface as a bad gateway.
func statusForError(err error) int {
	var ue *openrouter.UpstreamError
	var te *openrouter.TransportError
	switch {
	case errors.Is(err, model.ErrEmptyBrief):
		return http.StatusBadRequest
	case errors.As(err, &ue), errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Error("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
