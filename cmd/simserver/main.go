// Command simserver exposes run submission and diagnostic retrieval over
// HTTP: POST /runs starts a simulation from a YAML config body, GET
// /runs/:id returns its status and samples once it completes.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/zerodha/logf"

	"github.com/bxrne/nbodysim/internal/config"
	"github.com/bxrne/nbodysim/internal/logger"
	"github.com/bxrne/nbodysim/internal/reporting"
	"github.com/bxrne/nbodysim/internal/runner"
)

// runRecord tracks one submitted run's lifecycle for later retrieval.
type runRecord struct {
	State   string
	Samples []runner.Sample
	Bundle  reporting.Bundle
	Err     string
}

type server struct {
	mu   sync.RWMutex
	runs map[string]*runRecord
	next int
	log  *logf.Logger
}

func configFromCtx(c *gin.Context) (*config.Config, error) {
	yamlData := c.PostForm("config")
	if yamlData == "" {
		return nil, fmt.Errorf("config cannot be empty")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(yamlData)); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &cfg, nil
}

func (s *server) submit(cfg *config.Config) string {
	s.mu.Lock()
	s.next++
	id := fmt.Sprintf("run-%d", s.next)
	s.runs[id] = &runRecord{State: runner.StateBuilt}
	s.mu.Unlock()

	go s.execute(id, cfg)
	return id
}

func (s *server) execute(id string, cfg *config.Config) {
	r, err := runner.New(cfg, *s.logf())
	if err != nil {
		s.fail(id, err)
		return
	}

	s.mu.Lock()
	s.runs[id].State = runner.StateRunning
	s.mu.Unlock()

	samples, err := r.Run(context.Background())
	if err != nil {
		s.fail(id, err)
		return
	}

	bundle, err := reporting.GenerateBundle(*s.logf(), cfg.Report.OutputDir+"/"+id, samples, id)
	if err != nil {
		s.fail(id, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.runs[id]
	rec.State = runner.StateDone
	rec.Samples = samples
	rec.Bundle = bundle
}

func (s *server) fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.runs[id]
	rec.State = runner.StateFailed
	rec.Err = err.Error()
}

func (s *server) get(id string) (*runRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	return rec, ok
}

func (s *server) logf() *logf.Logger { return s.log }

func newServer(log *logf.Logger) *server {
	return &server{runs: make(map[string]*runRecord), log: log}
}

// newRouter wires srv's handlers onto a gin engine, separate from main so
// tests can exercise the routes with httptest without binding a socket.
func newRouter(srv *server, log *logf.Logger) *gin.Engine {
	r := gin.Default()
	r.Use(logger.LoggingMiddleware(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/runs", func(c *gin.Context) {
		runCfg, err := configFromCtx(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := srv.submit(runCfg)
		c.JSON(http.StatusAccepted, gin.H{"id": id, "state": runner.StateBuilt})
	})

	r.GET("/runs/:id", func(c *gin.Context) {
		rec, ok := srv.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown run id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"state":   rec.State,
			"samples": rec.Samples,
			"bundle":  rec.Bundle,
			"error":   rec.Err,
		})
	})

	return r
}

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "simserver: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.GetLogger(cfg.Logging.Level)
	srv := newServer(log)
	r := newRouter(srv, log)

	addr := cfg.Server.Addr
	log.Info("simserver listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("failed to start simserver", "error", err)
	}
}
