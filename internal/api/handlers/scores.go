// Package handlers implements the read-only scores API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/internal/storage"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// RunSource serves stored run history. Nil when no database is
// configured; the run endpoints answer 503 in that case.
type RunSource interface {
	LatestRun(ctx context.Context, modelID string) (*pipeline.RunResult, error)
	ListRuns(ctx context.Context, modelID string, limit int) ([]storage.RunInfo, error)
}

// ScoreHandler handles model and run history endpoints.
type ScoreHandler struct {
	models []*modelconfig.Model
	runs   RunSource
	logger *logger.Logger
}

// NewScoreHandler creates a score handler. runs may be nil.
func NewScoreHandler(models []*modelconfig.Model, runs RunSource, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		models: models,
		runs:   runs,
		logger: log,
	}
}

// ComponentInfo is one weighted component in a model listing.
type ComponentInfo struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Bindings int     `json:"bindings"`
}

// RatingInfo is one rung of a model's rating ladder.
type RatingInfo struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
}

// ModelInfo is the API view of a loaded model.
type ModelInfo struct {
	ID          string          `json:"id"`
	Version     string          `json:"version"`
	Description string          `json:"description,omitempty"`
	Components  []ComponentInfo `json:"components"`
	Ratings     []RatingInfo    `json:"ratings"`
	ConfigHash  string          `json:"config_hash,omitempty"`
}

// ListModels returns every loaded model.
// GET /api/v1/models
func (h *ScoreHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	infos := make([]ModelInfo, 0, len(h.models))
	for _, m := range h.models {
		infos = append(infos, h.modelInfo(m))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":  len(infos),
			"models": infos,
		},
	})
}

// GetModel returns one model by id.
// GET /api/v1/models/{id}
func (h *ScoreHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if m := modelconfig.Find(h.models, id); m != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    h.modelInfo(m),
		})
		return
	}

	respondError(w, http.StatusNotFound, "model not found: "+id)
}

// GetLatestRun returns the most recent stored run.
// GET /api/v1/runs/latest?model=<id>
func (h *ScoreHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run history disabled: no database configured")
		return
	}

	modelID := r.URL.Query().Get("model")

	run, err := h.runs.LatestRun(r.Context(), modelID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no stored runs")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest run")
		respondError(w, http.StatusInternalServerError, "failed to load latest run")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    run,
	})
}

// ListRuns returns run history headers, newest first.
// GET /api/v1/runs?model=<id>&limit=<n>
func (h *ScoreHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run history disabled: no database configured")
		return
	}

	modelID := r.URL.Query().Get("model")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit: "+raw)
			return
		}
		limit = parsed
	}

	infos, err := h.runs.ListRuns(r.Context(), modelID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count": len(infos),
			"runs":  infos,
		},
	})
}

func (h *ScoreHandler) modelInfo(m *modelconfig.Model) ModelInfo {
	info := ModelInfo{
		ID:          m.Meta.ModelID,
		Version:     m.Meta.Version,
		Description: m.Meta.Description,
	}
	if hash, err := modelconfig.Hash(m); err == nil {
		info.ConfigHash = hash
	}
	for _, c := range m.Components {
		info.Components = append(info.Components, ComponentInfo{
			Name:     c.Name,
			Weight:   c.Weight,
			Bindings: len(c.Bindings),
		})
	}
	for _, r := range m.Ratings {
		info.Ratings = append(info.Ratings, RatingInfo{Label: r.Label, Min: r.Min})
	}
	return info
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
