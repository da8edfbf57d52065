package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// POST /api/cards/{id}/qa/run {staged_url} — fetches the staged page and
// runs an automated check against it. QA is available on dev boards only.
func (a *api) handleRunQA(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		StagedURL string `json:"staged_url"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	req.StagedURL = strings.TrimSpace(req.StagedURL)
	if err := ValidateStagedURL(req.StagedURL); err != nil {
		writeError(w, 400, err.Error())
		return
	}
	boardID, _, err := a.store.BoardAndListByCard(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("qa card lookup", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	board, err := a.store.GetBoard(r.Context(), boardID)
	if err != nil {
		a.log.Error("qa board lookup", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	if board.Type != "dev" {
		writeError(w, 400, "qa is not available on this board")
		return
	}

	title, content, err := a.fetcher.Fetch(r.Context(), req.StagedURL)
	if err != nil {
		a.log.Error("fetch staged page", "err", err, "url", req.StagedURL)
		writeError(w, 502, "page fetch failed: "+err.Error())
		return
	}
	a.log.Debug("staged page fetched", "url", req.StagedURL, "title", title, "bytes", len(content))
	verdict, findings, err := a.ai.AnalyzeQA(r.Context(), req.StagedURL, content)
	if err != nil {
		a.log.Error("qa analysis", "err", err, "url", req.StagedURL)
		writeError(w, 502, "analysis failed: "+err.Error())
		return
	}
	res, err := a.store.AddQAResult(r.Context(), QAResult{
		CardID:    id,
		RunID:     uuid.NewString(),
		StagedURL: req.StagedURL,
		Verdict:   verdict,
		Findings:  findings,
	})
	if err != nil {
		a.log.Error("save qa result", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, res)
	a.publishCardChanged(r.Context(), id, "qa.created")
}

// GET /api/cards/{id}/qa
func (a *api) handleQAByCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.QAResultsByCard(r.Context(), id)
	if err != nil {
		a.log.Error("qa by card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// POST /api/qa/{id}/override {verdict, reason} — one-shot
func (a *api) handleOverrideQA(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct{ Verdict, Reason string }
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Verdict) == "" {
		writeError(w, 400, "invalid payload")
		return
	}
	if err := a.store.OverrideQAResult(r.Context(), id, req.Verdict, req.Reason); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, 404, "not found")
		case errors.Is(err, ErrConflict):
			writeError(w, 409, "result already overridden")
		default:
			a.log.Error("override qa", "err", err)
			writeError(w, 500, "internal error")
		}
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
}
