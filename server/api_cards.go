package main

import (
	"context"
	"errors"
	"net/http"
	"time"
)

func (a *api) handleCardsByList(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.CardsByList(r.Context(), id)
	if err != nil {
		a.log.Error("cards by list", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

func (a *api) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct{ Title, Description string }
	if err := readJSON(w, r, &req); err != nil || len(req.Title) == 0 {
		writeError(w, 400, "invalid payload")
		return
	}
	c, err := a.store.CreateCard(r.Context(), id, req.Title, req.Description)
	if err != nil {
		a.log.Error("create card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, c)
	if bid, e := a.store.BoardIDByList(r.Context(), c.ListID); e == nil {
		a.bus.Publish(Event{Type: "card.created", Entity: "card", Topic: boardTopic(bid), Payload: c})
	}
}

// GET /api/cards/{id}/aggregate?board={id}&active=tab — the one-fetch payload
// behind the detail view. A board id, when sent, must match the card's board
// (404 otherwise). The client echoes its current tab; the response resolves it
// against the visible set so a hidden tab falls back to details.
func (a *api) handleCardAggregate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	agg, err := a.loadCardAggregate(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("card aggregate", "err", err, "card", id)
		writeError(w, 500, "internal error")
		return
	}
	if b := r.URL.Query().Get("board"); b != "" {
		bid, err := parseID(b)
		if err != nil || bid != agg.BoardID {
			writeError(w, 404, "not found")
			return
		}
	}
	agg.ActiveTab = ResolveActiveTab(TabKey(r.URL.Query().Get("active")), agg.Tabs)
	writeData(w, 200, agg)
}

// PATCH /api/cards/{id} — discrete fields write immediately
func (a *api) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var p CardPatch
	if err := readJSON(w, r, &p); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	if err := a.store.UpdateCard(r.Context(), id, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("update card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.publishCardChanged(r.Context(), id, "card.updated")
}

var autosaveFields = map[string]bool{"title": true, "description": true, "brief": true}

// POST /api/cards/{id}/autosave {field, value, seq} — free-text fields go
// through the coalescer; rapid edits within the quiet window collapse into
// one store write carrying the final value.
func (a *api) handleAutosaveCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
		Seq   int64  `json:"seq"`
	}
	if err := readJSON(w, r, &req); err != nil || !autosaveFields[req.Field] {
		writeError(w, 400, "invalid payload")
		return
	}
	accepted := a.saver.Offer(id, req.Field, req.Value, req.Seq)
	writeData(w, 202, map[string]any{"accepted": accepted})
}

// flushAutosave is the coalescer sink: one store write per quiet period.
// Best-effort by design — failures are logged, never surfaced.
func (a *api) flushAutosave(cardID int64, field, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := CardPatch{}
	switch field {
	case "title":
		p.Title = &value
	case "description":
		p.Description = &value
	case "brief":
		p.Brief = &value
	default:
		return
	}
	if err := a.store.UpdateCard(ctx, cardID, p); err != nil {
		a.log.Error("autosave flush", "err", err, "card", cardID, "field", field)
		return
	}
	a.publishCardChanged(ctx, cardID, "card.updated")
}

func (a *api) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	bid, _, _ := a.store.BoardAndListByCard(r.Context(), id)
	if err := a.store.DeleteCard(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("delete card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	if bid != 0 {
		a.bus.Publish(Event{Type: "card.deleted", Entity: "card", Topic: boardTopic(bid), Payload: map[string]any{"id": id}})
	}
}

func (a *api) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		TargetListID int64 `json:"target_list_id"`
		NewIndex     int   `json:"new_index"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	if err := a.store.MoveCard(r.Context(), id, req.TargetListID, req.NewIndex); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("move card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.publishCardChanged(r.Context(), id, "card.moved")
}

// POST /api/cards/{id}/labels/{lid} — best-effort, fire-and-forget:
// failures are swallowed and the UI simply does not update.
func (a *api) handleToggleCardLabel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	lid, err := parseID(r.PathValue("lid"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	attached, err := a.store.ToggleCardLabel(r.Context(), id, lid)
	if err != nil {
		a.log.Debug("toggle label", "err", err, "card", id, "label", lid)
	}
	writeData(w, 200, map[string]any{"attached": attached})
	a.publishCardChanged(r.Context(), id, "card.updated")
}

// POST /api/cards/{id}/assignees {user_id}
func (a *api) handleAddAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := readJSON(w, r, &req); err != nil || req.UserID == 0 {
		writeError(w, 400, "invalid payload")
		return
	}
	if err := a.store.AddAssignee(r.Context(), id, req.UserID); err != nil {
		a.log.Error("add assignee", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.publishCardChanged(r.Context(), id, "card.updated")
}

func (a *api) handleRemoveAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	uid, err := parseID(r.PathValue("uid"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	if err := a.store.RemoveAssignee(r.Context(), id, uid); err != nil {
		a.log.Error("remove assignee", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	a.publishCardChanged(r.Context(), id, "card.updated")
}

// GET /api/cards/{id}/events — per-card change-notification stream
func (a *api) handleCardEvents(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	a.bus.ServeSSE(w, r, cardTopic(id))
}

// publishCardChanged notifies the card topic and the owning board topic so
// both the detail view and the board tile view refetch. Best-effort.
func (a *api) publishCardChanged(ctx context.Context, cardID int64, typ string) {
	a.bus.Publish(Event{Type: typ, Entity: "card", Topic: cardTopic(cardID), Payload: map[string]any{"id": cardID}})
	if bid, _, err := a.store.BoardAndListByCard(ctx, cardID); err == nil {
		a.bus.Publish(Event{Type: typ, Entity: "card", Topic: boardTopic(bid), Payload: map[string]any{"id": cardID}})
	}
}
