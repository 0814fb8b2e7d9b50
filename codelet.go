// Package codelet defines the request/response types for codelet IPC and the
// context record built for each completion request.
// Messages are JSON-encoded and sent over a Unix domain socket, one per line.
package codelet

import (
	"github.com/Paranoid-AF/codelet/document"
	"github.com/Paranoid-AF/codelet/lang"
)

// Completion modes.
const (
	// ModeLine asks for the rest of the current line.
	ModeLine = "line"
	// ModeSnippet asks for a multi-line block.
	ModeSnippet = "snippet"
)

// Error codes returned to the editor.
const (
	ErrCodeNotConfigured  = "not_configured"
	ErrCodeAPI            = "api_error"
	ErrCodeCancelled      = "cancelled"
	ErrCodeTimeout        = "timeout"
	ErrCodeContext        = "context_error"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeConfig         = "config_error"
	ErrCodeUnknownAction  = "unknown_action"
)

// Request is sent from the editor to the daemon.
type Request struct {
	// Type is empty for completions and "inspect" for a context dump.
	Type string `json:"type,omitempty"`
	// RequestID is a per-session incrementing identifier assigned by the editor.
	// The daemon echoes it back in the response for ordering.
	RequestID int `json:"request_id"`
	// SessionID identifies the editor session. Requests with the same
	// session id never run concurrently.
	SessionID string `json:"session_id"`
	// FileName is the path of the buffer, used for language detection and
	// project discovery.
	FileName string `json:"file_name"`
	// LanguageID is the editor's language tag. Detected from the file name
	// and text when empty.
	LanguageID string `json:"language_id,omitempty"`
	// Text is the full buffer content.
	Text string `json:"text"`
	// Line and Character are the zero-based cursor position.
	Line      int `json:"line"`
	Character int `json:"character"`
	// Prompt is an optional free-text instruction from the user.
	Prompt string `json:"prompt,omitempty"`
	// Mode is ModeLine or ModeSnippet. Empty uses the configured mode.
	Mode string `json:"mode,omitempty"`
	// Manual is true when the user explicitly asked for a completion.
	Manual bool `json:"manual,omitempty"`
	// ProjectRoot overrides project root discovery.
	ProjectRoot string `json:"project_root,omitempty"`
	// TabSize and InsertSpaces are the editor's indentation settings.
	TabSize      int   `json:"tab_size,omitempty"`
	InsertSpaces *bool `json:"insert_spaces,omitempty"`
}

// Response is sent from the daemon back to the editor.
type Response struct {
	// RequestID is echoed from the request for ordering on the client side.
	RequestID int `json:"request_id"`
	// Completion is the text to insert at the cursor; empty means no suggestion.
	Completion string `json:"completion"`
	// Error is set when the daemon cannot fulfill the request.
	Error *Error `json:"error,omitempty"`
}

// Error describes a daemon-side error returned to the editor.
type Error struct {
	// Code is a machine-readable error identifier (e.g. "not_configured", "api_error").
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
}

// InspectResponse answers an inspect request with the context record and the
// prompt that would be sent for it.
type InspectResponse struct {
	RequestID int            `json:"request_id"`
	Context   *ContextRecord `json:"context,omitempty"`
	Prompt    string         `json:"prompt,omitempty"`
	Error     *Error         `json:"error,omitempty"`
}

// WarmRequest is sent from the editor to warm the project info cache.
type WarmRequest struct {
	// Type is always "warm".
	Type string `json:"type"`
	// ProjectRoot is the directory to pre-cache project info for.
	ProjectRoot string `json:"project_root"`
}

// WarmResponse is sent from the daemon in response to a WarmRequest.
type WarmResponse struct {
	// OK is true when the warm-up was accepted.
	OK bool `json:"ok"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}

// ConfigRequest is sent from the editor for configuration operations.
type ConfigRequest struct {
	// Action is the config operation: "get", "reload", "defaults",
	// "validate" or "default_prompt".
	Action string `json:"action"`
}

// ConfigResponse is sent from the daemon in response to a ConfigRequest.
type ConfigResponse struct {
	// Config is the current configuration (for "get", "reload", and "defaults" actions).
	Config *Config `json:"config,omitempty"`
	// Prompt is the default prompt template (for "default_prompt" action).
	Prompt string `json:"prompt,omitempty"`
	// Warnings contains configuration warnings (for "validate" action).
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}

// ContextRecord is the snapshot of code and inferred facts around the cursor.
// It is built once per request and never modified afterwards.
type ContextRecord struct {
	// BeforeCode and AfterCode are whole lines above and below the cursor
	// line. With the cursor line they form a contiguous slice of the buffer.
	BeforeCode string `json:"before_code"`
	AfterCode  string `json:"after_code"`
	// BeforeCursor and AfterCursor split the cursor line at the cursor.
	BeforeCursor string `json:"before_cursor"`
	AfterCursor  string `json:"after_cursor"`

	Indentation         string `json:"indentation"`
	ExpectedIndentation string `json:"expected_indentation"`

	LanguageID   string            `json:"language_id"`
	FileName     string            `json:"file_name"`
	CursorOffset int               `json:"cursor_offset"`
	Position     document.Position `json:"position"`

	// Symbols is sorted. High-priority entries end with "*".
	Symbols []string `json:"symbols"`
	// Structures is sorted ascending by offset.
	Structures []lang.Structure `json:"structures"`

	CurrentScope   string   `json:"current_scope"`
	RelatedImports []string `json:"related_imports"`
	SyntaxContext  string   `json:"syntax_context"`

	// RangeStrategy names the branch that chose BeforeCode and AfterCode.
	RangeStrategy string `json:"range_strategy,omitempty"`
}

// ProjectInfo is the best-effort project metadata included in prompts.
type ProjectInfo struct {
	Root string `json:"root"`
	// Name comes from the first manifest that declares one.
	Name string `json:"name,omitempty"`
	// Manifests lists the manifest files that were read.
	Manifests    []string `json:"manifests,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	// PackageManager is detected from lockfiles (pnpm, yarn, cargo, ...).
	PackageManager string `json:"package_manager,omitempty"`
	// Files are the top-level file names of the project root.
	Files []string `json:"files,omitempty"`
}

// Empty reports whether the record carries nothing worth prompting with.
func (p *ProjectInfo) Empty() bool {
	return p == nil || (p.Name == "" && len(p.Dependencies) == 0 && len(p.Files) == 0)
}
