// Package plugin discovers and runs external key injection plugins.
package plugin

import "encoding/json"

// Actions understood by keyboard plugins.
const (
	ActionPress   = "press"
	ActionRelease = "release"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the plugin declares every given action.
func (m Manifest) Supports(actions ...string) bool {
	for _, want := range actions {
		found := false
		for _, a := range m.Actions {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Request is written to the plugin's stdin.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// KeyParams are the params of press and release requests.
type KeyParams struct {
	Key string `json:"key"`
}

// NewKeyRequest builds a press or release request for a key.
func NewKeyRequest(action, key string) (*Request, error) {
	params, err := json.Marshal(KeyParams{Key: key})
	if err != nil {
		return nil, err
	}
	return &Request{Action: action, Params: params}, nil
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
