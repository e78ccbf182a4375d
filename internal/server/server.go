// Package server exposes the diagnosis pipeline as an HTTP service:
// requests are accepted immediately with a session id, processed in the
// background, and the result is delivered to the caller's webhook.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boom724/boomguru/internal/diagnose"
	"github.com/boom724/boomguru/internal/imagesource"
	"github.com/boom724/boomguru/internal/store"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8092".
	Addr string

	// CallbackAPIKey is sent with webhook callbacks in the
	// Boom724ExternalApiKey header.
	CallbackAPIKey string

	// FetchTimeout bounds the image download.
	FetchTimeout time.Duration
}

// Server accepts diagnosis requests and runs them in the background.
type Server struct {
	cfg      Config
	pipeline *diagnose.Pipeline
	fetcher  *imagesource.Fetcher
	analyses store.AnalysisRepo
	client   *http.Client

	wg sync.WaitGroup
}

// New creates a Server. analyses may be nil to disable persistence.
func New(cfg Config, pipeline *diagnose.Pipeline, analyses store.AnalysisRepo) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: pipeline,
		fetcher:  imagesource.NewFetcher(cfg.FetchTimeout),
		analyses: analyses,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// DiagnoseRequest is the intake payload.
type DiagnoseRequest struct {
	ImageURL     string `json:"image_url"`
	ImageID      string `json:"image_id"`
	SerialNumber string `json:"serial_number,omitempty"`
	FormID       string `json:"form_id,omitempty"`
	QuestionID   string `json:"question_id,omitempty"`
	WebhookURL   string `json:"webhook_url"`
	Language     string `json:"language"`
}

// CallbackPayload is posted to the webhook when processing finishes.
type CallbackPayload struct {
	SessionID      string                     `json:"session_id"`
	ImageID        string                     `json:"image_id"`
	SerialNumber   string                     `json:"serial_number,omitempty"`
	FormID         string                     `json:"form_id,omitempty"`
	QuestionID     string                     `json:"question_id,omitempty"`
	Answer         string                     `json:"answer"`
	Status         string                     `json:"status"`
	PartCategories []string                   `json:"part_categories"`
	Record         *diagnose.DiagnosticRecord `json:"record,omitempty"`
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /diagnose", s.handleDiagnose)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then drains
// in-flight background tasks.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.cfg.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.wg.Wait()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.ImageURL == "" || req.ImageID == "" || req.WebhookURL == "" {
		http.Error(w, "image_url, image_id and webhook_url are required", http.StatusBadRequest)
		return
	}

	sessionID := uuid.NewString()

	logrus.WithFields(logrus.Fields{
		"session_id": sessionID,
		"image_id":   req.ImageID,
		"form_id":    req.FormID,
		"language":   req.Language,
	}).Info("diagnosis request accepted")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.process(context.Background(), sessionID, req)
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id":    sessionID,
		"image_id":      req.ImageID,
		"serial_number": req.SerialNumber,
		"form_id":       req.FormID,
		"question_id":   req.QuestionID,
		"webhook_url":   req.WebhookURL,
		"language":      req.Language,
		"status":        "processing",
	})
}

// process runs the pipeline for one accepted request, persists the
// outcome and posts the webhook callback.
func (s *Server) process(ctx context.Context, sessionID string, req DiagnoseRequest) {
	payload := CallbackPayload{
		SessionID:      sessionID,
		ImageID:        req.ImageID,
		SerialNumber:   req.SerialNumber,
		FormID:         req.FormID,
		QuestionID:     req.QuestionID,
		PartCategories: []string{},
	}

	record, err := s.diagnose(ctx, sessionID, req)
	if record != nil {
		payload.Record = record
		payload.Answer = record.Narrative
		if record.PartCategories != nil {
			payload.PartCategories = record.PartCategories
		}
	}

	if err != nil {
		logrus.WithField("session_id", sessionID).WithError(err).Error("diagnosis failed")
		payload.Status = "failed"
		if payload.Answer == "" {
			payload.Answer = err.Error()
		}
	} else {
		payload.Status = "done"
	}

	s.persist(ctx, sessionID, req, record, payload.Status)
	s.sendCallback(ctx, sessionID, req, payload)
}

func (s *Server) diagnose(ctx context.Context, sessionID string, req DiagnoseRequest) (*diagnose.DiagnosticRecord, error) {
	image, err := s.fetcher.Fetch(ctx, req.ImageURL)
	if err != nil {
		return nil, err
	}
	logrus.WithField("session_id", sessionID).Info("image downloaded")

	task := diagnose.ImageTask{
		ID:       sessionID,
		Image:    image,
		Language: req.Language,
	}
	return s.pipeline.Run(ctx, task)
}

func (s *Server) persist(ctx context.Context, sessionID string, req DiagnoseRequest, record *diagnose.DiagnosticRecord, status string) {
	if s.analyses == nil {
		return
	}

	a := store.Analysis{
		SessionID:    sessionID,
		ImageID:      req.ImageID,
		SerialNumber: req.SerialNumber,
		FormID:       req.FormID,
		QuestionID:   req.QuestionID,
		ImageURL:     req.ImageURL,
		Status:       status,
	}
	if record != nil {
		a.IsRealPhoto = record.IsRealPhoto
		a.Category = string(record.Category)
		a.PartCategories = strings.Join(record.PartCategories, ", ")
		a.Narrative = record.Narrative
		if len(record.Errors) > 0 {
			if data, err := json.Marshal(record.Errors); err == nil {
				a.ErrorsJSON = string(data)
			}
		}
	}

	if err := s.analyses.Save(ctx, a); err != nil {
		logrus.WithField("session_id", sessionID).WithError(err).Error("failed to persist analysis")
	}
}

func (s *Server) sendCallback(ctx context.Context, sessionID string, dr DiagnoseRequest, payload CallbackPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		logrus.WithField("session_id", sessionID).WithError(err).Error("marshal callback payload")
		return
	}

	language := dr.Language
	if language == "" {
		language = "en"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dr.WebhookURL, strings.NewReader(string(body)))
	if err != nil {
		logrus.WithField("session_id", sessionID).WithError(err).Error("build callback request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Language", language)
	if s.cfg.CallbackAPIKey != "" {
		req.Header.Set("Boom724ExternalApiKey", s.cfg.CallbackAPIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logrus.WithField("session_id", sessionID).WithError(err).Error("callback failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		logrus.WithField("session_id", sessionID).Info("callback sent")
	} else {
		logrus.WithFields(logrus.Fields{
			"session_id": sessionID,
			"status":     resp.StatusCode,
		}).Error("callback rejected")
	}
}
