// Package commands implements the four user actions that publish a note
// as a gist, and the registry the CLI, HTTP API and MCP server expose.
package commands

import "errors"

// ID identifies a command.
type ID string

const (
	SaveAsNewGist           ID = "save-as-new-gist"
	SaveSelectionAsNewGist  ID = "save-as-new-gist-selection"
	SaveAsNewUpdateableGist ID = "save-as-new-updateable-gist"
	UpdateExistingGist      ID = "update-existing-gist"
)

// ErrUnknownCommand is returned by Execute for an ID not in the registry.
var ErrUnknownCommand = errors.New("unknown command")

// Command describes a registered action.
type Command struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	UsesSelection bool   `json:"uses_selection"`
	Tracks        bool   `json:"tracks"`
}

var registry = []Command{
	{ID: SaveAsNewGist, Name: "Save current file as a new private Gist"},
	{ID: SaveSelectionAsNewGist, Name: "Save current selection as a new private Gist", UsesSelection: true},
	{ID: SaveAsNewUpdateableGist, Name: "Save current file as a new updateable private Gist", Tracks: true},
	{ID: UpdateExistingGist, Name: "Update existing Gist for current file", Tracks: true},
}

// EventKind is the gist event a successful run of c produces.
func (c Command) EventKind() string {
	if c.ID == UpdateExistingGist {
		return "updated"
	}
	return "created"
}

// All returns the registered commands in palette order.
func All() []Command {
	return append([]Command(nil), registry...)
}

// Lookup finds a command by id.
func Lookup(id string) (Command, bool) {
	for _, c := range registry {
		if string(c.ID) == id {
			return c, true
		}
	}
	return Command{}, false
}
