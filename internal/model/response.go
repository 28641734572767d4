package model

// APIResponse is the JSON envelope of every endpoint. Error holds a short,
// client-safe message and Code a stable machine-readable tag.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}
