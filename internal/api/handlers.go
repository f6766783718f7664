package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joacominatel/sqlmapper/internal/app"
	"github.com/joacominatel/sqlmapper/internal/database"
	"github.com/joacominatel/sqlmapper/internal/jsonmap"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type healthResponse struct {
	Service  string `json:"service"`
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

type analyzeRequest struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect"`
}

type analyzeResponse struct {
	RequestID   string                   `json:"requestId"`
	Dialect     sqlmap.Dialect           `json:"dialect"`
	DisplayName string                   `json:"displayName"`
	Parameters  []sqlmap.ParsedParameter `json:"parameters"`
	Columns     []sqlmap.ParsedColumn    `json:"columns"`
	Artifacts   sqlmap.Artifacts         `json:"artifacts"`
}

type describeRequest struct {
	SQL string `json:"sql"`
}

type describeResponse struct {
	RequestID string `json:"requestId"`
	*database.Description
}

type templatesResponse struct {
	Templates []jsonmap.Template `json:"templates"`
}

type jsonMapRequest struct {
	Template   string `json:"template"`
	Attributes string `json:"attributes"`
}

type jsonMapResponse struct {
	RequestID  string   `json:"requestId"`
	Template   string   `json:"template"`
	Attributes []string `json:"attributes"`
	Generated  string   `json:"generated"`
	DataSchema string   `json:"dataSchema"`
	HasMarker  bool     `json:"hasMarker"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	db := "offline"
	if s.service.Connected() {
		db = "connected"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Service:  "sqlmapper",
		Status:   "ok",
		Database: db,
		Time:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	d, err := sqlmap.ParseDialect(req.Dialect)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a := s.service.AnalyzeAs(req.SQL, d)
	writeJSON(w, http.StatusOK, analyzeResponse{
		RequestID:   RequestIDFrom(r.Context()),
		Dialect:     a.Dialect,
		DisplayName: a.Dialect.DisplayName(),
		Parameters:  a.Result.Parameters,
		Columns:     a.Result.Columns,
		Artifacts:   a.Artifacts,
	})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		s.fail(w, r, http.StatusBadRequest, "sql is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), describeTimeout)
	defer cancel()

	desc, err := s.service.Describe(ctx, req.SQL)
	if err != nil {
		var describeErr *app.ErrDescribe
		switch {
		case errors.Is(err, app.ErrNotConnected):
			s.fail(w, r, http.StatusServiceUnavailable, err.Error())
		case errors.As(err, &describeErr):
			s.fail(w, r, http.StatusUnprocessableEntity, describeErr.Cause.Error())
		default:
			s.logger.Error("describe failed", zap.Error(err))
			s.fail(w, r, http.StatusInternalServerError, "describe failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, describeResponse{
		RequestID:   RequestIDFrom(r.Context()),
		Description: desc,
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templatesResponse{Templates: jsonmap.Templates()})
}

func (s *Server) handleJSONMap(w http.ResponseWriter, r *http.Request) {
	var req jsonMapRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, doc := s.service.MapJSON(req.Template, req.Attributes)
	writeJSON(w, http.StatusOK, jsonMapResponse{
		RequestID:  RequestIDFrom(r.Context()),
		Template:   res.Template,
		Attributes: res.Attributes,
		Generated:  res.Generated,
		DataSchema: doc,
		HasMarker:  jsonmap.HasMarker(res.Template),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.fail(w, r, http.StatusRequestEntityTooLarge, "payload too large")
		case errors.Is(err, io.EOF):
			s.fail(w, r, http.StatusBadRequest, "empty json payload")
		default:
			s.fail(w, r, http.StatusBadRequest, "invalid json payload")
		}
		return false
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "payload too large")
		} else {
			s.fail(w, r, http.StatusBadRequest, "unexpected data after json payload")
		}
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestIDFrom(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
