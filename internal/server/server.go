// =============================================================================
// Purchase Order Builder - Upload Service
// =============================================================================
//
// The upload service wraps the converter for office users: an order workbook
// and a master workbook are uploaded, processed, and the result CSV is offered
// for download.
//
// ROUTES:
//   GET  /                     upload form
//   POST /process/             order_file + master_file -> JSON summary
//   GET  /download/:filename/  result CSV as attachment
//
// WORKSPACE:
//   Uploaded workbooks are read straight from the multipart form and never
//   stored. <workspace>/results/ holds result files until Retention expires.
//
// =============================================================================

package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/purchase-order-builder/internal/config"
	"github.com/ginjaninja78/purchase-order-builder/internal/converter"
	"github.com/ginjaninja78/purchase-order-builder/pkg/utils"
)

//go:embed templates/index.html
var indexHTML []byte

const shutdownTimeout = 10 * time.Second

// Server is the upload service.
type Server struct {
	cfg    config.ServerConfig
	output config.OutputConfig
	conv   *converter.Converter
	log    *zap.Logger
	engine *gin.Engine

	resultDir string
}

// New creates the service and its workspace directories.
func New(cfg *config.Config, conv *converter.Converter, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:       cfg.Server,
		output:    cfg.Output,
		conv:      conv,
		log:       log,
		resultDir: filepath.Join(cfg.Server.WorkspaceDir, "results"),
	}
	if err := os.MkdirAll(s.resultDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", s.resultDir, err)
	}

	gin.SetMode(cfg.Server.Mode)
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.cfg.MaxUploadMB << 20
	r.HandleMethodNotAllowed = true

	r.Use(RequestIDMiddleware(), LoggerMiddleware(s.log), gin.Recovery())

	r.NoMethod(func(c *gin.Context) {
		respondError(c, WrapError(http.StatusMethodNotAllowed, "POST method required", nil), nil)
	})
	r.NoRoute(func(c *gin.Context) {
		respondError(c, WrapError(http.StatusNotFound, "페이지를 찾을 수 없습니다.", nil), nil)
	})

	r.GET("/", s.handleIndex)
	r.POST("/process/", s.handleProcess)
	r.GET("/download/:filename/", s.handleDownload)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. Expired
// workspace entries are removed in the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("upload service listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down upload service")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) cleanupLoop(ctx context.Context) {
	interval := s.cfg.Retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes results older than the retention period.
func (s *Server) cleanup() {
	removed, err := utils.CleanOldEntries(s.resultDir, s.cfg.Retention)
	if err != nil {
		s.log.Warn("workspace cleanup failed", zap.String("dir", s.resultDir), zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("workspace cleanup", zap.String("dir", s.resultDir), zap.Int("removed", removed))
	}
}
