package model

import "time"

// Exchange is a completed user/bot turn pair as written to transcript outputs.
type Exchange struct {
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Utterance  string    `json:"utterance"`
	Response   string    `json:"response"`
	Tag        string    `json:"tag,omitempty"`        // resolved intent, empty if resolution failed
	Confidence float64   `json:"confidence,omitempty"` // classifier score when the backend reports one
	Fallback   bool      `json:"fallback,omitempty"`   // true when the fixed fallback reply was used
	Error      string    `json:"error,omitempty"`      // resolution failure detail
}
