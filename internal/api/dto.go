package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/gistnote/internal/commands"
	"github.com/starford/gistnote/internal/models"
	"github.com/starford/gistnote/internal/workspace"
)

// RunCommandRequest is the request body for POST /api/commands/{id}.
// An empty path means no document is active and the command does nothing.
type RunCommandRequest struct {
	Path      string            `json:"path" example:"notes/hello.md"`
	Selection *models.Selection `json:"selection,omitempty"`
	Lines     string            `json:"lines,omitempty" example:"3:7"`
}

// Validate validates the request.
func (r *RunCommandRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Lines,
			validation.When(r.Selection != nil, validation.Empty.Error("use either selection or lines")),
			validation.By(func(any) error {
				if r.Lines == "" {
					return nil
				}
				_, err := workspace.ParseLineRange(r.Lines)
				return err
			}),
		),
	)
}

// selection resolves the requested range, if any. Validate must pass first.
func (r *RunCommandRequest) selection() *models.Selection {
	if r.Selection != nil {
		return r.Selection
	}
	if r.Lines == "" {
		return nil
	}
	sel, _ := workspace.ParseLineRange(r.Lines)
	return &sel
}

// CommandListResponse wraps the command registry.
type CommandListResponse struct {
	Commands []commands.Command `json:"commands" validate:"required"`
}

// RunCommandResponse is returned after a command published a gist.
type RunCommandResponse = commands.Result

// SettingsResponse shows the settings with the token masked.
type SettingsResponse struct {
	GitHubAPIToken *string `json:"githubApiToken" example:"****abcd"`
	Configured     bool    `json:"configured"`
}

// UpdateSettingsRequest is the request body for PUT /api/settings.
type UpdateSettingsRequest struct {
	GitHubAPIToken *string `json:"githubApiToken" validate:"required"`
}

// Validate validates the request.
func (r *UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GitHubAPIToken, validation.NotNil),
	)
}

// TrackedListResponse wraps tracked notes.
type TrackedListResponse struct {
	Tracked []models.TrackedNote `json:"tracked" validate:"required"`
}

// HistoryResponse wraps the publication log.
type HistoryResponse struct {
	Publications []models.Publication `json:"publications" validate:"required"`
}
