package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// handleConfig handles GET and PUT requests for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConfig(w, r)
	case http.MethodPut:
		s.handlePutConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type animationTiming struct {
	SkipFrames int     `json:"skipFrames"`
	FrameDelay float64 `json:"frameDelay"`
}

// handleGetConfig returns the current configuration
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.GetConfig()

	timings := map[string]animationTiming{}
	for name, t := range s.store.Timings() {
		timings[name] = animationTiming{SkipFrames: t.SkipFrames, FrameDelay: t.FrameDelay}
	}

	menus := make([]map[string]any, 0, len(cfg.Menu))
	for _, section := range cfg.Menu {
		menus = append(menus, map[string]any{
			"name":    section.Name,
			"kind":    section.Kind,
			"options": section.Options,
		})
	}

	response := struct {
		Toggle     string                     `json:"toggle"`
		WebPort    int                        `json:"webPort"`
		Menus      []map[string]any           `json:"menus"`
		Animations map[string]animationTiming `json:"animations"`
	}{
		Toggle:     cfg.Hotkey.Toggle,
		WebPort:    cfg.Web.Port,
		Menus:      menus,
		Animations: timings,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handlePutConfig updates animation timings and the toggle hotkey
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Toggle     *string                    `json:"toggle"`
		Animations map[string]animationTiming `json:"animations"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for name, timing := range req.Animations {
		delay := time.Duration(timing.FrameDelay * float64(time.Second))
		if err := s.store.Save(name, timing.SkipFrames, delay); err != nil {
			// Non-fatal: the in-memory timing is already updated.
			slog.Error("Failed to persist animation timing", "name", name, "error", err)
		}
	}

	if req.Toggle != nil && *req.Toggle != "" {
		s.mu.Lock()
		s.config.Hotkey.Toggle = *req.Toggle
		s.mu.Unlock()
		if err := s.GetConfig().Save(); err != nil {
			slog.Error("Failed to save config", "error", err)
			http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	daysStr := r.URL.Query().Get("days")
	days := 7 // default to 7 days
	if daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	kind, err := s.db.GetKindStats(days)
	if err != nil {
		slog.Error("Failed to get kind stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"overall": overall,
		"daily":   daily,
		"kind":    kind,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleHistory handles GET and DELETE requests for dispatch history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetHistory returns paginated dispatch history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 50 // default
	offset := 0

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	dispatches, err := s.db.GetDispatches(limit, offset)
	if err != nil {
		slog.Error("Failed to get dispatches", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.db.GetDispatchCount()
	if err != nil {
		slog.Error("Failed to get dispatch count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"dispatches": dispatches,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleDeleteHistory deletes a dispatch by ID
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path (e.g., /api/history/123)
	path := r.URL.Path
	parts := strings.Split(path, "/")
	if len(parts) < 4 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	idStr := parts[len(parts)-1]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := s.db.DeleteDispatch(id); err != nil {
		slog.Error("Failed to delete dispatch", "error", err, "id", id)
		http.Error(w, "Failed to delete dispatch", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// handleStatus returns the current overlay state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var status any = map[string]string{"status": "idle"}
	if s.StatusFunc != nil {
		status = s.StatusFunc()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
