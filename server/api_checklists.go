package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// checklistView decorates a checklist with its progress counter.
type checklistView struct {
	Checklist
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Counter string `json:"counter"`
}

func viewChecklist(c Checklist) checklistView {
	done, total, percent := c.Progress()
	return checklistView{
		Checklist: c,
		Done:      done,
		Total:     total,
		Percent:   percent,
		Counter:   counterLabel(done, total),
	}
}

func counterLabel(done, total int) string {
	return fmt.Sprintf("%d/%d", done, total)
}

// GET /api/cards/{id}/checklists
func (a *api) handleChecklistsByCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.ChecklistsByCard(r.Context(), id)
	if err != nil {
		a.log.Error("checklists by card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	out := make([]checklistView, 0, len(items))
	for _, c := range items {
		out = append(out, viewChecklist(c))
	}
	writeData(w, 200, out)
}

// POST /api/cards/{id}/checklists {title}
func (a *api) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, 400, "invalid payload")
		return
	}
	c, err := a.store.CreateChecklist(r.Context(), id, strings.TrimSpace(req.Title))
	if err != nil {
		a.log.Error("create checklist", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, viewChecklist(c))
	a.bus.Publish(Event{Type: "checklist.created", Entity: "checklist", Topic: cardTopic(id), Payload: c})
}

// DELETE /api/checklists/{id}
func (a *api) handleDeleteChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	cardID, _ := a.store.ChecklistCard(r.Context(), id)
	if err := a.store.DeleteChecklist(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("delete checklist", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	if cardID != 0 {
		a.bus.Publish(Event{Type: "checklist.deleted", Entity: "checklist", Topic: cardTopic(cardID), Payload: map[string]any{"id": id}})
	}
}

// POST /api/checklists/{id}/items {body}
func (a *api) handleAddChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Body) == "" {
		writeError(w, 400, "invalid payload")
		return
	}
	it, err := a.store.AddChecklistItem(r.Context(), id, req.Body)
	if err != nil {
		a.log.Error("add checklist item", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, it)
	a.publishChecklistChanged(r, id)
}

// PATCH /api/checklists/{id}/items/{iid} {done} — discrete toggle, immediate write
func (a *api) handleToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	iid, err := parseID(r.PathValue("iid"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		Done bool `json:"done"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	if err := a.store.SetChecklistItemDone(r.Context(), iid, req.Done); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("toggle checklist item", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.publishChecklistChanged(r, id)
}

// DELETE /api/checklists/{id}/items/{iid} — best-effort delete
func (a *api) handleDeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	iid, err := parseID(r.PathValue("iid"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	if err := a.store.DeleteChecklistItem(r.Context(), iid); err != nil {
		a.log.Debug("delete checklist item", "err", err, "item", iid)
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.publishChecklistChanged(r, id)
}

// GET /api/checklists/{id}/events — per-checklist change stream
func (a *api) handleChecklistEvents(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	a.bus.ServeSSE(w, r, checklistTopic(id))
}

func (a *api) publishChecklistChanged(r *http.Request, checklistID int64) {
	a.bus.Publish(Event{Type: "checklist.updated", Entity: "checklist", Topic: checklistTopic(checklistID), Payload: map[string]any{"id": checklistID}})
	if cardID, err := a.store.ChecklistCard(r.Context(), checklistID); err == nil {
		a.bus.Publish(Event{Type: "checklist.updated", Entity: "checklist", Topic: cardTopic(cardID), Payload: map[string]any{"id": checklistID}})
	}
}
