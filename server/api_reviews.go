package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// imageKeyCheck returns a predicate over the card's image attachments.
func (a *api) imageKeyCheck(r *http.Request, cardID int64) (func(string) bool, error) {
	atts, err := a.store.AttachmentsByCard(r.Context(), cardID)
	if err != nil {
		return nil, err
	}
	images := make(map[string]bool, len(atts))
	for _, att := range atts {
		if att.IsImage() {
			images[att.StorageKey] = true
		}
	}
	return func(key string) bool { return images[key] }, nil
}

// POST /api/cards/{id}/review/wizard — opens a wizard; review is available
// only on design and video boards.
func (a *api) handleCreateReviewWizard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	boardID, _, err := a.store.BoardAndListByCard(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("wizard card lookup", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	board, err := a.store.GetBoard(r.Context(), boardID)
	if err != nil {
		a.log.Error("wizard board lookup", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	if board.Type != "design" && board.Type != "video" {
		writeError(w, 400, "review is not available on this board")
		return
	}
	z := a.wizards.Create(id)
	writeData(w, 201, z.State())
}

func (a *api) wizardFromPath(w http.ResponseWriter, r *http.Request) (*Wizard, bool) {
	z, err := a.wizards.Get(r.PathValue("wid"))
	if err != nil {
		writeError(w, 404, "wizard not found")
		return nil, false
	}
	return z, true
}

// GET /api/review/wizard/{wid}
func (a *api) handleWizardState(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	writeData(w, 200, z.State())
}

func (a *api) writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrWizardBusy):
		writeError(w, 409, "an operation is already in flight")
	case errors.Is(err, ErrWizardStep), errors.Is(err, ErrNoImage),
		errors.Is(err, ErrSameImage), errors.Is(err, ErrEmptyItems):
		writeError(w, 400, err.Error())
	default:
		a.log.Error("wizard", "err", err)
		writeError(w, 500, "internal error")
	}
}

// POST /api/review/wizard/{wid}/image {storage_key}
func (a *api) handleWizardSelectImage(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		StorageKey string `json:"storage_key"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	isImage, err := a.imageKeyCheck(r, z.CardID)
	if err != nil {
		a.log.Error("wizard attachments", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	if err := z.SelectImage(req.StorageKey, isImage); err != nil {
		a.writeWizardError(w, err)
		return
	}
	writeData(w, 200, z.State())
}

// POST /api/review/wizard/{wid}/compare {storage_key} — empty key means "no comparison"
func (a *api) handleWizardSelectCompare(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		StorageKey string `json:"storage_key"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	isImage, err := a.imageKeyCheck(r, z.CardID)
	if err != nil {
		a.log.Error("wizard attachments", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	if err := z.SelectCompare(req.StorageKey, isImage); err != nil {
		a.writeWizardError(w, err)
		return
	}
	writeData(w, 200, z.State())
}

// POST /api/review/wizard/{wid}/back
func (a *api) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	if err := z.Back(); err != nil {
		a.writeWizardError(w, err)
		return
	}
	writeData(w, 200, z.State())
}

// POST /api/review/wizard/{wid}/extract — one extraction in flight per
// wizard; a failure keeps the wizard on the same step with state intact.
func (a *api) handleWizardExtract(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	if err := z.beginWork(); err != nil {
		a.writeWizardError(w, err)
		return
	}
	defer z.endWork()
	state := z.State()
	items, err := a.ai.ExtractChangeRequests(r.Context(), state.ImageKey, state.CompareKey)
	if err != nil {
		a.log.Error("extract change requests", "err", err, "wizard", z.ID)
		writeError(w, 502, "extraction failed: "+err.Error())
		return
	}
	z.setItems(items)
	writeData(w, 200, z.State())
}

// PUT /api/review/wizard/{wid}/items {items} — client-side add/edit/remove
func (a *api) handleWizardEditItems(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		Items []string `json:"items"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	if err := z.EditItems(req.Items); err != nil {
		a.writeWizardError(w, err)
		return
	}
	writeData(w, 200, z.State())
}

// POST /api/review/wizard/{wid}/submit — requires at least one non-empty
// item; on success the wizard is gone and a new ReviewResult exists.
func (a *api) handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	z, ok := a.wizardFromPath(w, r)
	if !ok {
		return
	}
	if err := z.beginWork(); err != nil {
		a.writeWizardError(w, err)
		return
	}
	defer z.endWork()
	items, imageKey, compareKey, err := z.submittable()
	if err != nil {
		a.writeWizardError(w, err)
		return
	}
	res, err := a.store.AddReviewResult(r.Context(), ReviewResult{
		CardID:         z.CardID,
		RunID:          uuid.NewString(),
		ImageKey:       imageKey,
		CompareKey:     compareKey,
		Verdict:        "requested",
		ChangeRequests: items,
	})
	if err != nil {
		a.log.Error("submit review", "err", err, "wizard", z.ID)
		writeError(w, 500, "internal error")
		return
	}
	a.wizards.Delete(z.ID)
	writeData(w, 201, res)
	a.publishCardChanged(r.Context(), z.CardID, "review.created")
}

// GET /api/cards/{id}/reviews — newest-first; the head is "latest"
func (a *api) handleReviewsByCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.ReviewResultsByCard(r.Context(), id)
	if err != nil {
		a.log.Error("reviews by card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// POST /api/reviews/{id}/override {verdict, reason} — one-shot
func (a *api) handleOverrideReview(w http.ResponseWriter, r *http.Request) {
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
	if err := a.store.OverrideReviewResult(r.Context(), id, req.Verdict, req.Reason); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, 404, "not found")
		case errors.Is(err, ErrConflict):
			writeError(w, 409, "result already overridden")
		default:
			a.log.Error("override review", "err", err)
			writeError(w, 500, "internal error")
		}
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
}
