package main

import (
	"errors"
	"net/http"
	"strings"
)

var validBoardTypes = map[string]bool{
	"design": true, "video": true, "dev": true, "events": true, "podcast": true,
}

func (a *api) handleListBoards(w http.ResponseWriter, r *http.Request) {
	items, err := a.store.ListBoards(r.Context())
	if err != nil {
		a.log.Error("list boards", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

func (a *api) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		writeError(w, 401, "unauthorized")
		return
	}
	var req struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	}
	if err := readJSON(w, r, &req); err != nil || len(req.Title) == 0 {
		writeError(w, 400, "invalid payload")
		return
	}
	if req.Type == "" {
		req.Type = "design"
	}
	if !validBoardTypes[req.Type] {
		writeError(w, 400, "invalid board type")
		return
	}
	b, err := a.store.CreateBoard(r.Context(), u.ID, req.Title, req.Type)
	if err != nil {
		a.log.Error("create board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, b)
}

func (a *api) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	b, err := a.store.GetBoard(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("get board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, b)
}

func (a *api) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		Title *string `json:"title"`
		Type  *string `json:"type"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, 400, "title cannot be empty")
		return
	}
	if req.Type != nil && !validBoardTypes[*req.Type] {
		writeError(w, 400, "invalid board type")
		return
	}
	if err := a.store.UpdateBoard(r.Context(), id, req.Title, req.Type); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("update board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.bus.Publish(Event{Type: "board.updated", Entity: "board", Topic: boardTopic(id), Payload: map[string]any{"id": id}})
}

func (a *api) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	if err := a.store.DeleteBoard(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("delete board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
}

// GET /api/boards/{id}/events — change-notification stream for the board tile view
func (a *api) handleBoardEvents(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	a.bus.ServeSSE(w, r, boardTopic(id))
}

// GET /api/boards/{id}/labels
func (a *api) handleBoardLabels(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.LabelsByBoard(r.Context(), id)
	if err != nil {
		a.log.Error("board labels", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// POST /api/boards/{id}/labels {name, color}
func (a *api) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct{ Name, Color string }
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, 400, "invalid payload")
		return
	}
	l, err := a.store.CreateLabel(r.Context(), id, strings.TrimSpace(req.Name), req.Color)
	if err != nil {
		a.log.Error("create label", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, l)
}
