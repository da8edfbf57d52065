package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GET /api/cards/{id}/attachments
func (a *api) handleAttachmentsByCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	items, err := a.store.AttachmentsByCard(r.Context(), id)
	if err != nil {
		a.log.Error("attachments by card", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, items)
}

// POST /api/cards/{id}/attachments {file_name, mime_type, size_bytes} —
// registers metadata; the storage key is server-assigned and the upload
// itself happens against managed storage out of band.
func (a *api) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	var req struct {
		FileName  string `json:"file_name"`
		MimeType  string `json:"mime_type"`
		SizeBytes int64  `json:"size_bytes"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.FileName) == "" {
		writeError(w, 400, "invalid payload")
		return
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}
	key := uuid.NewString()
	att, err := a.store.AddAttachment(r.Context(), id, req.FileName, req.MimeType, req.SizeBytes, key)
	if err != nil {
		a.log.Error("add attachment", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 201, att)
	a.publishCardChanged(r.Context(), id, "attachment.created")
}

// GET /api/attachments/{id}/url — issues a fresh signed download URL
func (a *api) handleAttachmentURL(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	att, err := a.store.AttachmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("attachment url", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"url": a.signer.SignedURL(att.StorageKey, 15*time.Minute)})
}

// DELETE /api/attachments/{id}
func (a *api) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id")
		return
	}
	att, _ := a.store.AttachmentByID(r.Context(), id)
	if err := a.store.DeleteAttachment(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("delete attachment", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeData(w, 200, map[string]any{"ok": true})
	if att.CardID != 0 {
		a.publishCardChanged(r.Context(), att.CardID, "attachment.deleted")
	}
}

// GET /api/files/{key}?exp=&sig= — verifies a signed URL and redirects to
// managed storage; invalid or expired signatures get 403.
func (a *api) handleSignedFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	q := r.URL.Query()
	if !a.signer.Verify(key, q.Get("exp"), q.Get("sig")) {
		writeError(w, 403, "invalid or expired signature")
		return
	}
	att, err := a.store.AttachmentByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("signed file", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	storageBase := getenv("STORAGE_BASE_URL", "")
	if storageBase == "" {
		// no storage backend configured: answer with the metadata instead
		writeData(w, 200, att)
		return
	}
	http.Redirect(w, r, storageBase+"/"+att.StorageKey, http.StatusFound)
}
