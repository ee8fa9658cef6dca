package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gistnote/internal/apperr"
	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/settings"
	"github.com/starford/gistnote/internal/workspace"
)

// Executor runs registered commands.
type Executor interface {
	Execute(ctx context.Context, id commands.ID, docs workspace.DocumentReader) (*commands.Result, error)
}

// Ledger is the read side of the publish ledger.
type Ledger interface {
	ListTracked(ctx context.Context) ([]models.TrackedNote, error)
	ListPublications(ctx context.Context, path string, limit int) ([]models.Publication, error)
}

// Handler holds API route handlers.
type Handler struct {
	exec     Executor
	vault    *workspace.Vault
	settings *settings.Store
	ledger   Ledger
}

// NewHandler creates a new Handler.
func NewHandler(exec Executor, vault *workspace.Vault, store *settings.Store, ledger Ledger) *Handler {
	return &Handler{exec: exec, vault: vault, settings: store, ledger: ledger}
}

// ListCommands handles GET /api/commands.
//
//	@Summary		List the publish commands
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	CommandListResponse
//	@Security		BearerAuth
//	@Router			/commands [get]
func (h *Handler) ListCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CommandListResponse{Commands: commands.All()})
}

// RunCommand handles POST /api/commands/{id}.
//
//	@Summary		Run a publish command on a note
//	@Tags			commands
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Command id"
//	@Param			body	body		RunCommandRequest	true	"Active note and selection"
//	@Success		200		{object}	RunCommandResponse
//	@Success		204		"No active document"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		412		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/commands/{id} [post]
func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	cmd, ok := commands.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown command"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RunCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	res, err := h.exec.Execute(r.Context(), cmd.ID, h.vault.Session(req.Path, req.selection()))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		case errors.Is(err, apperr.ErrMissingCredential):
			writeJSON(w, http.StatusPreconditionFailed, errorBody("github token not configured"))
		case errors.Is(err, apperr.ErrMissingTrackingID):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("note has no gist_id"))
		case errors.Is(err, apperr.ErrRemote):
			writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		default:
			slog.Error("run command failed",
				slog.String("command", string(cmd.ID)),
				slog.String("path", req.Path),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Show settings with the token masked
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	SettingsResponse
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settingsResponse())
}

// UpdateSettings handles PUT /api/settings. The change is persisted before
// the response is written.
//
//	@Summary		Set the GitHub token
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateSettingsRequest	true	"New token"
//	@Success		200		{object}	SettingsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.settings.SetToken(*req.GitHubAPIToken); err != nil {
		slog.Error("save settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, h.settingsResponse())
}

func (h *Handler) settingsResponse() SettingsResponse {
	resp := SettingsResponse{Configured: h.settings.HasToken()}
	if tok := h.settings.Snapshot().GitHubAPIToken; tok != nil {
		masked := settings.Mask(*tok)
		resp.GitHubAPIToken = &masked
	}
	return resp
}

// ListTracked handles GET /api/gists.
//
//	@Summary		List notes tracked by a gist
//	@Tags			gists
//	@Produce		json
//	@Success		200	{object}	TrackedListResponse
//	@Security		BearerAuth
//	@Router			/gists [get]
func (h *Handler) ListTracked(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.ListTracked(r.Context())
	if err != nil {
		slog.Error("list tracked failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []models.TrackedNote{}
	}
	writeJSON(w, http.StatusOK, TrackedListResponse{Tracked: items})
}

// History handles GET /api/gists/history.
//
//	@Summary		List recent publications
//	@Tags			gists
//	@Produce		json
//	@Param			path	query		string	false	"Only this note"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/gists/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	items, err := h.ledger.ListPublications(r.Context(), q.Get("path"), limit)
	if err != nil {
		slog.Error("list publications failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []models.Publication{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Publications: items})
}
