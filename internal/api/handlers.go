package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jiho-dev/recap-archive/internal/ingest"
	"github.com/jiho-dev/recap-archive/internal/journal"
	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/pack"
	"github.com/jiho-dev/recap-archive/internal/recap"
	"github.com/jiho-dev/recap-archive/internal/store"
)

// maxUploadBytes bounds one multipart upload batch.
const maxUploadBytes = 512 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func monthVars(r *http.Request) (int, int, error) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		return 0, 0, fmt.Errorf("bad year %q", vars["year"])
	}
	id, err := strconv.Atoi(vars["month"])
	if err != nil {
		return 0, 0, fmt.Errorf("bad month %q", vars["month"])
	}
	return id, year, nil
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.journal.Snapshot().Months)
}

func (s *Server) handleGetMonth(w http.ResponseWriter, r *http.Request) {
	id, year, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.journal.Month(id, year)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, year, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form")
		return
	}

	var files []ingest.File
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			s.log.Warn().Err(err).Str("file", fh.Filename).Msg("skipping unreadable part")
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.log.Warn().Err(err).Str("file", fh.Filename).Msg("skipping unreadable part")
			continue
		}
		files = append(files, ingest.File{
			Name: fh.Filename,
			MIME: fh.Header.Get("Content-Type"),
			Data: data,
		})
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files in request")
		return
	}

	mems, err := s.pipeline.Ingest(r.Context(), files, id, year, nil)
	if err != nil {
		if errors.Is(err, journal.ErrMonthNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"ingested": len(mems),
		"skipped":  len(files) - len(mems),
		"memories": mems,
	})
}

type reorderRequest struct {
	From     *int   `json:"from,omitempty"`
	To       int    `json:"to"`
	MemoryID string `json:"memoryId,omitempty"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	id, year, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json body")
		return
	}

	switch {
	case req.MemoryID != "":
		err = s.journal.ReorderByID(id, year, req.MemoryID, req.To)
	case req.From != nil:
		err = s.journal.Reorder(id, year, *req.From, req.To)
	default:
		writeError(w, http.StatusBadRequest, "need memoryId or from")
		return
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case errors.Is(err, journal.ErrMonthNotFound), errors.Is(err, journal.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, journal.ErrBadIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	id, year, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.journal.Month(id, year)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if m.Analysis != nil && m.Analysis.Story != "" && r.URL.Query().Get("force") != "true" {
		writeError(w, http.StatusConflict, "analysis exists; pass force=true to overwrite")
		return
	}

	analysis, err := s.recap.Summarize(r.Context(), m.Name, m.Memories)
	if errors.Is(err, recap.ErrEmptyMonth) {
		writeError(w, http.StatusUnprocessableEntity, "month has no memories")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := s.journal.SetAnalysis(id, year, &analysis); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handlePutAnalysis(w http.ResponseWriter, r *http.Request) {
	id, year, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req model.Analysis
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json body")
		return
	}

	// Manual edits keep the generated highlights unless replaced.
	if len(req.KeyHighlights) == 0 {
		if m, err := s.journal.Month(id, year); err == nil && m.Analysis != nil {
			req.KeyHighlights = m.Analysis.KeyHighlights
		}
	}

	if err := s.journal.SetAnalysis(id, year, &req); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type patchMemoryRequest struct {
	Caption string `json:"caption"`
}

func (s *Server) handlePatchMemory(w http.ResponseWriter, r *http.Request) {
	memID := mux.Vars(r)["id"]
	var req patchMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json body")
		return
	}
	if err := s.journal.UpdateCaption(memID, req.Caption); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	memID := mux.Vars(r)["id"]
	if err := s.journal.DeleteMemory(r.Context(), memID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]
	data, err := s.store.GetBlob(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		// Absence is "not yet loaded", not corruption; 404 lets the
		// gallery retry.
		writeError(w, http.StatusNotFound, "media not available")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

func (s *Server) handlePutBGM(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio body")
		return
	}
	if err := s.store.PutBlob(r.Context(), model.BGMBlobKey, data); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.player.SetSource("/api/bgm"); err != nil {
		s.log.Warn().Err(err).Msg("bgm source swap failed")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetBGM(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.GetBlob(r.Context(), model.BGMBlobKey)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no custom track")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

func (s *Server) handleBGMState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state": s.player.State().String(),
		"muted": s.player.Muted(),
	})
}

func (s *Server) handleBGMPlay(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Play(); err != nil {
		// Soft warning: playback needs a loaded source, no retry here.
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.handleBGMState(w, r)
}

func (s *Server) handleBGMPause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause(r.URL.Query().Get("immediate") == "true")
	s.handleBGMState(w, r)
}

func (s *Server) handleBGMPreview(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Preview(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.handleBGMState(w, r)
}

func (s *Server) handleVideoStarted(w http.ResponseWriter, r *http.Request) {
	s.player.VideoStarted()
	s.handleBGMState(w, r)
}

func (s *Server) handleVideoEnded(w http.ResponseWriter, r *http.Request) {
	s.player.VideoEnded()
	s.handleBGMState(w, r)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	// Flush pending edits so the bundle holds the latest snapshot.
	if err := s.syncer.Flush(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("recap-archive-%s.zip", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := pack.Export(r.Context(), s.store, w); err != nil {
		s.log.Error().Err(err).Msg("export failed")
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty package body")
		return
	}
	if err := pack.Import(r.Context(), s.store, bytes.NewReader(data), int64(len(data))); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Reload the working set from the restored snapshot.
	if err := s.journal.Load(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "pass confirm=true to wipe the archive")
		return
	}
	keys, err := s.store.BlobKeys(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, k := range keys {
		if err := s.store.DeleteBlob(r.Context(), k); err != nil {
			s.log.Warn().Err(err).Str("key", k).Msg("reset: blob delete failed")
		}
	}
	s.journal.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
