package main

import (
	"net/http"
	"time"
)

func (a *api) routes(mux *http.ServeMux) {
	// auth
	mux.HandleFunc("POST /api/auth/register", a.withRateLimit("auth", 20, time.Minute, a.handleRegister))
	mux.HandleFunc("POST /api/auth/login", a.withRateLimit("auth", 30, time.Minute, a.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	mux.HandleFunc("GET /api/auth/me", a.handleMe)
	mux.HandleFunc("GET /api/profiles", a.requireAuth(a.handleProfiles))

	mux.HandleFunc("GET /api/health", a.handleHealth)

	// boards
	mux.HandleFunc("GET /api/boards", a.requireAuth(a.handleListBoards))
	mux.HandleFunc("POST /api/boards", a.requireAuth(a.handleCreateBoard))
	mux.HandleFunc("GET /api/boards/{id}", a.requireAuth(a.handleGetBoard))
	mux.HandleFunc("PATCH /api/boards/{id}", a.requireAuth(a.handleUpdateBoard))
	mux.HandleFunc("DELETE /api/boards/{id}", a.requireAuth(a.handleDeleteBoard))
	mux.HandleFunc("GET /api/boards/{id}/events", a.requireAuth(a.handleBoardEvents))
	mux.HandleFunc("GET /api/boards/{id}/labels", a.requireAuth(a.handleBoardLabels))
	mux.HandleFunc("POST /api/boards/{id}/labels", a.requireAuth(a.handleCreateLabel))

	// lists
	mux.HandleFunc("GET /api/boards/{id}/lists", a.requireAuth(a.handleListsByBoard))
	mux.HandleFunc("POST /api/boards/{id}/lists", a.requireAuth(a.handleCreateList))
	mux.HandleFunc("PATCH /api/lists/{id}", a.requireAuth(a.handleUpdateList))
	mux.HandleFunc("DELETE /api/lists/{id}", a.requireAuth(a.handleDeleteList))

	// cards
	mux.HandleFunc("GET /api/lists/{id}/cards", a.requireAuth(a.handleCardsByList))
	mux.HandleFunc("POST /api/lists/{id}/cards", a.requireAuth(a.handleCreateCard))
	mux.HandleFunc("GET /api/cards/{id}", a.requireAuth(a.handleCardAggregate))
	mux.HandleFunc("GET /api/cards/{id}/aggregate", a.requireAuth(a.handleCardAggregate))
	mux.HandleFunc("PATCH /api/cards/{id}", a.requireAuth(a.handleUpdateCard))
	mux.HandleFunc("POST /api/cards/{id}/autosave", a.requireAuth(a.handleAutosaveCard))
	mux.HandleFunc("DELETE /api/cards/{id}", a.requireAuth(a.handleDeleteCard))
	mux.HandleFunc("POST /api/cards/{id}/move", a.requireAuth(a.handleMoveCard))
	mux.HandleFunc("GET /api/cards/{id}/events", a.requireAuth(a.handleCardEvents))
	mux.HandleFunc("POST /api/cards/{id}/labels/{lid}", a.requireAuth(a.handleToggleCardLabel))
	mux.HandleFunc("POST /api/cards/{id}/assignees", a.requireAuth(a.handleAddAssignee))
	mux.HandleFunc("DELETE /api/cards/{id}/assignees/{uid}", a.requireAuth(a.handleRemoveAssignee))

	// comments
	mux.HandleFunc("GET /api/cards/{id}/comments", a.requireAuth(a.handleCommentsByCard))
	mux.HandleFunc("POST /api/cards/{id}/comments", a.requireAuth(a.handleAddComment))
	mux.HandleFunc("PATCH /api/comments/{id}", a.requireAuth(a.handleUpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", a.requireAuth(a.handleDeleteComment))

	// checklists
	mux.HandleFunc("GET /api/cards/{id}/checklists", a.requireAuth(a.handleChecklistsByCard))
	mux.HandleFunc("POST /api/cards/{id}/checklists", a.requireAuth(a.handleCreateChecklist))
	mux.HandleFunc("DELETE /api/checklists/{id}", a.requireAuth(a.handleDeleteChecklist))
	mux.HandleFunc("GET /api/checklists/{id}/events", a.requireAuth(a.handleChecklistEvents))
	mux.HandleFunc("POST /api/checklists/{id}/items", a.requireAuth(a.handleAddChecklistItem))
	mux.HandleFunc("PATCH /api/checklists/{id}/items/{iid}", a.requireAuth(a.handleToggleChecklistItem))
	mux.HandleFunc("DELETE /api/checklists/{id}/items/{iid}", a.requireAuth(a.handleDeleteChecklistItem))

	// attachments
	mux.HandleFunc("GET /api/cards/{id}/attachments", a.requireAuth(a.handleAttachmentsByCard))
	mux.HandleFunc("POST /api/cards/{id}/attachments", a.requireAuth(a.handleAddAttachment))
	mux.HandleFunc("GET /api/attachments/{id}/url", a.requireAuth(a.handleAttachmentURL))
	mux.HandleFunc("DELETE /api/attachments/{id}", a.requireAuth(a.handleDeleteAttachment))
	mux.HandleFunc("GET /api/files/{key}", a.handleSignedFile)

	// review wizard
	mux.HandleFunc("POST /api/cards/{id}/review/wizard", a.requireAuth(a.handleCreateReviewWizard))
	mux.HandleFunc("GET /api/review/wizard/{wid}", a.requireAuth(a.handleWizardState))
	mux.HandleFunc("POST /api/review/wizard/{wid}/image", a.requireAuth(a.handleWizardSelectImage))
	mux.HandleFunc("POST /api/review/wizard/{wid}/compare", a.requireAuth(a.handleWizardSelectCompare))
	mux.HandleFunc("POST /api/review/wizard/{wid}/back", a.requireAuth(a.handleWizardBack))
	mux.HandleFunc("POST /api/review/wizard/{wid}/extract", a.requireAuth(a.withRateLimit("ai", 10, time.Minute, a.handleWizardExtract)))
	mux.HandleFunc("PUT /api/review/wizard/{wid}/items", a.requireAuth(a.handleWizardEditItems))
	mux.HandleFunc("POST /api/review/wizard/{wid}/submit", a.requireAuth(a.handleWizardSubmit))
	mux.HandleFunc("GET /api/cards/{id}/reviews", a.requireAuth(a.handleReviewsByCard))
	mux.HandleFunc("POST /api/reviews/{id}/override", a.requireAuth(a.handleOverrideReview))

	// qa
	mux.HandleFunc("POST /api/cards/{id}/qa/run", a.requireAuth(a.withRateLimit("ai", 10, time.Minute, a.handleRunQA)))
	mux.HandleFunc("GET /api/cards/{id}/qa", a.requireAuth(a.handleQAByCard))
	mux.HandleFunc("POST /api/qa/{id}/override", a.requireAuth(a.handleOverrideQA))

	// clients / leads
	mux.HandleFunc("GET /api/clients", a.requireAuth(a.handleClients))
	mux.HandleFunc("POST /api/clients", a.requireAuth(a.handleCreateClient))
	mux.HandleFunc("GET /api/clients/{id}", a.requireAuth(a.handleGetClient))
	mux.HandleFunc("PATCH /api/clients/{id}", a.requireAuth(a.handleUpdateClient))
	mux.HandleFunc("DELETE /api/clients/{id}", a.requireAuth(a.handleDeleteClient))

	// team runs
	mux.HandleFunc("GET /api/cards/{id}/team-runs", a.requireAuth(a.handleTeamRunsByCard))
	mux.HandleFunc("POST /api/cards/{id}/team-runs", a.requireAuth(a.handleAddTeamRun))
	mux.HandleFunc("POST /api/team-runs/{id}/decision", a.requireAuth(a.handleDecideTeamRun))

	// podcast guests
	mux.HandleFunc("GET /api/podcast-guests", a.requireAuth(a.handlePodcastGuests))
	mux.HandleFunc("POST /api/podcast-guests", a.requireAuth(a.handleAddPodcastGuest))
	mux.HandleFunc("POST /api/podcast-guests/{id}/decision", a.requireAuth(a.handleDecidePodcastGuest))
}
