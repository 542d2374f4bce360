package models

import "encoding/json"

// ParseRequest represents the request payload for previewing a share text
type ParseRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// SubmitRequest represents the request payload for recording a result
type SubmitRequest struct {
	UserID string `json:"userId" validate:"required,min=1,max=64"`
	Text   string `json:"text" validate:"required,max=4000"`
}

// MemberRequest represents the request payload for group membership changes
type MemberRequest struct {
	UserID string `json:"userId" validate:"required,min=1,max=64"`
}

// GameInfo describes a supported game and how it is compared
type GameInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SortOrder    string   `json:"sortOrder"`
	BestPossible *float64 `json:"bestPossible"`
	BestLabel    string   `json:"bestLabel,omitempty"`
}

// RankingsResponse wraps a computed ranking. Data holds the calculator
// output already encoded so cached payloads can be served unchanged.
type RankingsResponse struct {
	GroupID string          `json:"groupId"`
	GameID  string          `json:"gameId,omitempty"`
	Date    string          `json:"date,omitempty"`
	Scope   string          `json:"scope"`
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
