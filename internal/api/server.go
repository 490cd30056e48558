// Package api exposes the journal to the web front end over HTTP.
package api

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jiho-dev/recap-archive/internal/bgm"
	"github.com/jiho-dev/recap-archive/internal/ingest"
	"github.com/jiho-dev/recap-archive/internal/journal"
	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
	"github.com/jiho-dev/recap-archive/internal/syncer"
)

// Summarizer is the narrative summary dependency.
type Summarizer interface {
	Summarize(ctx context.Context, monthName string, memories []model.Memory) (model.Analysis, error)
}

// Server wires the journal, pipeline, playback controller and summary
// client behind the HTTP surface.
type Server struct {
	store    store.ObjectStore
	journal  *journal.Journal
	syncer   *syncer.Syncer
	pipeline *ingest.Pipeline
	player   *bgm.Controller
	recap    Summarizer
	log      zerolog.Logger
}

// NewServer builds the Server around its collaborators.
func NewServer(st store.ObjectStore, j *journal.Journal, sy *syncer.Syncer, p *ingest.Pipeline, player *bgm.Controller, summarizer Summarizer, log zerolog.Logger) *Server {
	return &Server{
		store:    st,
		journal:  j,
		syncer:   sy,
		pipeline: p,
		player:   player,
		recap:    summarizer,
		log:      log,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware(s.log))
	r.Use(accessLog(s.log))

	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/api/months", s.handleListMonths).Methods("GET")
	r.HandleFunc("/api/months/{year}/{month}", s.handleGetMonth).Methods("GET")
	r.HandleFunc("/api/months/{year}/{month}/media", s.handleUpload).Methods("POST")
	r.HandleFunc("/api/months/{year}/{month}/reorder", s.handleReorder).Methods("POST")
	r.HandleFunc("/api/months/{year}/{month}/recap", s.handleRecap).Methods("POST")
	r.HandleFunc("/api/months/{year}/{month}/analysis", s.handlePutAnalysis).Methods("PUT")

	r.HandleFunc("/api/memories/{id}", s.handlePatchMemory).Methods("PATCH")
	r.HandleFunc("/api/memories/{id}", s.handleDeleteMemory).Methods("DELETE")
	r.HandleFunc("/api/media/{id}", s.handleGetMedia).Methods("GET")

	r.HandleFunc("/api/bgm", s.handlePutBGM).Methods("PUT")
	r.HandleFunc("/api/bgm", s.handleGetBGM).Methods("GET")
	r.HandleFunc("/api/bgm/state", s.handleBGMState).Methods("GET")
	r.HandleFunc("/api/bgm/play", s.handleBGMPlay).Methods("POST")
	r.HandleFunc("/api/bgm/pause", s.handleBGMPause).Methods("POST")
	r.HandleFunc("/api/bgm/preview", s.handleBGMPreview).Methods("POST")
	r.HandleFunc("/api/video/started", s.handleVideoStarted).Methods("POST")
	r.HandleFunc("/api/video/ended", s.handleVideoEnded).Methods("POST")

	r.HandleFunc("/api/export", s.handleExport).Methods("GET")
	r.HandleFunc("/api/import", s.handleImport).Methods("POST")
	r.HandleFunc("/api/reset", s.handleReset).Methods("POST")

	return r
}
