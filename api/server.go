// Package api exposes the compiler over HTTP for the browser editor.
// One endpoint does the work: POST /api/v1/compile takes the diagram
// state and returns the rendered Terraform document.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"terraform-canvas/compiler"
	"terraform-canvas/pkg/diagram"
)

// Version is stamped by the build.
var Version = "0.1.0"

// Server is the HTTP host around the pure compiler.
type Server struct {
	config   Config
	compiler *compiler.Compiler
	validate *validator.Validate
}

// NewServer creates a server with all mappers registered.
func NewServer(config Config) *Server {
	return &Server{
		config:   config,
		compiler: compiler.New(),
		validate: validator.New(),
	}
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/compile", s.handleCompile)
		r.Post("/validate", s.handleValidate)
	})

	return r
}

// ListenAndServe starts the server on the configured port.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Info().Str("addr", addr).Str("version", Version).Msg("Starting terraform-canvas API server")
	return http.ListenAndServe(addr, s.Router())
}

// NodeRequest mirrors diagram.Node with request validation rules.
type NodeRequest struct {
	ID         string           `json:"id" validate:"required"`
	Kind       string           `json:"kind" validate:"required"`
	Position   diagram.Position `json:"position"`
	Properties map[string]any   `json:"properties"`
}

// EdgeRequest mirrors diagram.Edge with request validation rules.
type EdgeRequest struct {
	ID        string `json:"id"`
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required,necsfield=From"`
	Category  string `json:"category" validate:"required,oneof=trigger permission data_flow"`
	Direction string `json:"direction" validate:"omitempty,oneof=unidirectional bidirectional"`
	FromPort  string `json:"from_port"`
	ToPort    string `json:"to_port"`
}

// CompileRequest is the editor's compile payload.
type CompileRequest struct {
	Nodes []NodeRequest `json:"nodes" validate:"dive"`
	Edges []EdgeRequest `json:"edges" validate:"dive"`
}

// CompileResponse carries the rendered document plus the filename the
// editor should offer for download.
type CompileResponse struct {
	Filename string             `json:"filename"`
	Text     string             `json:"text"`
	Warnings []compiler.Warning `json:"warnings"`
}

func (r CompileRequest) toDiagram() *diagram.Diagram {
	d := &diagram.Diagram{
		Nodes: make([]diagram.Node, 0, len(r.Nodes)),
		Edges: make([]diagram.Edge, 0, len(r.Edges)),
	}
	for _, n := range r.Nodes {
		props := n.Properties
		if props == nil {
			props = map[string]any{}
		}
		d.Nodes = append(d.Nodes, diagram.Node{
			ID:         n.ID,
			Kind:       diagram.Kind(n.Kind),
			Position:   n.Position,
			Properties: props,
		})
	}
	for _, e := range r.Edges {
		direction := diagram.EdgeDirection(e.Direction)
		if direction == "" {
			direction = diagram.DirectionUnidirectional
		}
		d.Edges = append(d.Edges, diagram.Edge{
			ID:        e.ID,
			From:      e.From,
			To:        e.To,
			Category:  diagram.EdgeCategory(e.Category),
			Direction: direction,
			FromPort:  diagram.Port(e.FromPort),
			ToPort:    diagram.Port(e.ToPort),
		})
	}
	return d
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	d := req.toDiagram()
	text, err := s.compiler.Compile(d)
	if err != nil {
		// Compile surfaces failures as a comment document; report the
		// text anyway so the editor can show it.
		log.Warn().Err(err).Msg("Compilation recovered from failure")
	}

	s.jsonResponse(w, http.StatusOK, CompileResponse{
		Filename: "main.tf",
		Text:     text,
		Warnings: s.compiler.Validate(d),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	warnings := s.compiler.Validate(req.toDiagram())
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"warnings": warnings,
		"passed":   len(warnings) == 0,
	})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (CompileRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return CompileRequest{}, false
	}
	if err := s.validate.Struct(req); err != nil {
		s.jsonError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid diagram: %v", err))
		return CompileRequest{}, false
	}
	return req, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"version": Version})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
