package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

var validStages = map[string]bool{
	"new": true, "contacted": true, "quoted": true, "booked": true, "lost": true,
}

// GET /api/clients
func (a *api) handleClients(w http.ResponseWriter, r *http.Request) {
	items, err := a.store.ListClients(r.Context())
	if err != nil {
		a.log.Error("list clients", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// GET /api/clients/{id}
func (a *api) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	c, err := a.store.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("get client", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, c)
}

// POST /api/clients
func (a *api) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c Client
	if err := readJSON(w, r, &c); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		writeError(w, 400, "name required")
		return
	}
	if c.Stage != "" && !validStages[c.Stage] {
		writeError(w, 400, "invalid stage")
		return
	}
	out, err := a.store.CreateClient(r.Context(), c)
	if err != nil {
		a.log.Error("create client", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, out)
}

// PATCH /api/clients/{id}
func (a *api) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var p ClientPatch
	if err := readJSON(w, r, &p); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	if p.Stage != nil && !validStages[*p.Stage] {
		writeError(w, 400, "invalid stage")
		return
	}
	if err := a.store.UpdateClient(r.Context(), id, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("update client", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	c, err := a.store.GetClient(r.Context(), id)
	if err != nil {
		a.log.Error("get client after update", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, c)
}

// DELETE /api/clients/{id}
func (a *api) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	if err := a.store.DeleteClient(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("delete client", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
}

// --- Team runs ---

var validTeamDecisions = map[string]bool{"approve": true, "revise": true, "scrap": true}

// GET /api/cards/{id}/team-runs
func (a *api) handleTeamRunsByCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.TeamRunsByCard(r.Context(), id)
	if err != nil {
		a.log.Error("team runs by card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// POST /api/cards/{id}/team-runs {team, status, output} — records a run
// that executed elsewhere; run_id is minted here.
func (a *api) handleAddTeamRun(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct{ Team, Status, Output string }
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	req.Team = strings.TrimSpace(req.Team)
	if req.Team == "" {
		writeError(w, 400, "team required")
		return
	}
	if req.Status == "" {
		req.Status = "done"
	}
	t, err := a.store.AddTeamRun(r.Context(), id, uuid.NewString(), req.Team, req.Status, req.Output)
	if err != nil {
		a.log.Error("add team run", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, t)
	a.publishCardChanged(r.Context(), id, "team_run.created")
}

// POST /api/team-runs/{id}/decision {decision} — approve|revise|scrap, one-shot
func (a *api) handleDecideTeamRun(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct{ Decision string }
	if err := readJSON(w, r, &req); err != nil || !validTeamDecisions[req.Decision] {
		writeError(w, 400, "decision must be approve, revise or scrap")
		return
	}
	if err := a.store.DecideTeamRun(r.Context(), id, req.Decision); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, 404, "not found")
		case errors.Is(err, ErrConflict):
			writeError(w, 409, "run already decided")
		default:
			a.log.Error("decide team run", "err", err)
			writeError(w, 500, "internal error")
		}
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
}

// --- Podcast guests ---

// GET /api/podcast-guests?status=sourced
func (a *api) handlePodcastGuests(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items, err := a.store.ListPodcastGuests(r.Context(), status)
	if err != nil {
		a.log.Error("list podcast guests", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// POST /api/podcast-guests
func (a *api) handleAddPodcastGuest(w http.ResponseWriter, r *http.Request) {
	var g PodcastGuest
	if err := readJSON(w, r, &g); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		writeError(w, 400, "name required")
		return
	}
	out, err := a.store.AddPodcastGuest(r.Context(), g)
	if err != nil {
		a.log.Error("add podcast guest", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, out)
}

// POST /api/podcast-guests/{id}/decision {approve} — moves the guest out of
// the sourced queue exactly once.
func (a *api) handleDecidePodcastGuest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		Approve *bool `json:"approve"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Approve == nil {
		writeError(w, 400, "invalid payload")
		return
	}
	status := "rejected"
	if *req.Approve {
		status = "approved"
	}
	if err := a.store.DecidePodcastGuest(r.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, 404, "not found")
		case errors.Is(err, ErrConflict):
			writeError(w, 409, "guest already decided")
		default:
			a.log.Error("decide podcast guest", "err", err)
			writeError(w, 500, "internal error")
		}
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
}
