package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesis-alloc/thesis-alloc/alloc"
)

// serveCmd runs the HTTP upload shell
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an HTTP endpoint that allocates uploaded CSV files",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		logger, closeLog, err := newLogger(cfg.Log, os.Stderr)
		if err != nil {
			logrus.Fatalf("Failed to set up logging: %v", err)
		}
		defer func() { _ = closeLog() }()

		gin.SetMode(gin.ReleaseMode)
		if err := serve(cfg, logger); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	},
}

// tableJSON is the wire form of an alloc.Table.
type tableJSON struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

func toTableJSON(t *alloc.Table) tableJSON {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return tableJSON{Header: t.Header, Rows: rows}
}

// allocationResponse is the body of a successful POST /api/v1/allocations.
type allocationResponse struct {
	RunID            string     `json:"run_id"`
	Summary          RunSummary `json:"summary"`
	Allocations      tableJSON  `json:"allocations"`
	PreferenceCounts tableJSON  `json:"preference_counts"`
}

type errorResponse struct {
	RunID string `json:"run_id,omitempty"`
	Error string `json:"error"`
}

// allocationHandler runs the pipeline on uploaded files.
type allocationHandler struct {
	cfg Config
	log logrus.FieldLogger
}

// newRouter wires the upload endpoints.
func newRouter(cfg Config, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	h := &allocationHandler{cfg: cfg, log: log}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := r.Group("/api/v1")
	api.POST("/allocations", h.allocate)
	api.POST("/allocations/allocations.csv", h.download(func(res *alloc.Result) *alloc.Table {
		return res.AllocationTable(cfg.Columns.Allocated)
	}, cfg.Output.AllocationsFile))
	api.POST("/allocations/preferences.csv", h.download(func(res *alloc.Result) *alloc.Table {
		return res.PreferenceTable()
	}, cfg.Output.PreferencesFile))
	return r
}

// requestLogger logs one line per request at info level.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("request")
	}
}

// run reads the multipart "file" field and runs the pipeline on it. On
// failure it has already written the error response.
func (h *allocationHandler) run(c *gin.Context) (string, *alloc.Result, bool) {
	runID := uuid.NewString()
	log := h.log.WithField("run_id", runID)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{RunID: runID, Error: "invalid or missing file"})
		return runID, nil, false
	}
	if fh.Size > h.cfg.Server.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{RunID: runID, Error: fmt.Sprintf("file exceeds %d bytes", h.cfg.Server.MaxUploadBytes)})
		return runID, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		log.WithError(err).Error("opening upload")
		c.JSON(http.StatusInternalServerError, errorResponse{RunID: runID, Error: "could not read upload"})
		return runID, nil, false
	}
	defer func() { _ = f.Close() }()

	tbl, err := alloc.ReadCSV(f)
	if err != nil {
		writeRunError(c, log, runID, err)
		return runID, nil, false
	}
	log.Infof("Received %s: %d students", fh.Filename, tbl.NumRows())

	res, err := alloc.Run(c.Request.Context(), tbl, h.cfg.PipelineConfig(), log)
	if err != nil {
		writeRunError(c, log, runID, err)
		return runID, nil, false
	}
	return runID, res, true
}

func (h *allocationHandler) allocate(c *gin.Context) {
	runID, res, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, allocationResponse{
		RunID:            runID,
		Summary:          newRunSummary(runID, res),
		Allocations:      toTableJSON(res.AllocationTable(h.cfg.Columns.Allocated)),
		PreferenceCounts: toTableJSON(res.PreferenceTable()),
	})
}

// download returns a handler that sends one result table as a CSV attachment.
func (h *allocationHandler) download(pick func(*alloc.Result) *alloc.Table, filename string) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID, res, ok := h.run(c)
		if !ok {
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("X-Run-ID", runID)
		c.Status(http.StatusOK)
		if err := pick(res).WriteCSV(c.Writer); err != nil {
			h.log.WithField("run_id", runID).WithError(err).Error("writing CSV response")
		}
	}
}

// writeRunError maps pipeline errors to HTTP statuses.
func writeRunError(c *gin.Context, log logrus.FieldLogger, runID string, err error) {
	var se *alloc.SchemaError
	var ae *alloc.AllocationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &se), errors.Is(err, alloc.ErrRaggedRow):
		status = http.StatusBadRequest
	case errors.As(err, &ae):
		status = http.StatusUnprocessableEntity
	}
	log.WithError(err).WithField("status", status).Error("allocation request failed")
	c.JSON(status, errorResponse{RunID: runID, Error: err.Error()})
}

// serve starts the HTTP server and blocks until SIGINT/SIGTERM or a listen
// error, then shuts down gracefully.
func serve(cfg Config, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(cfg, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignals)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case sig := <-osSignals:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
