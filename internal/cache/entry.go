package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is one cached dataset payload with its expiry metadata.
type Entry struct {
	// Key is the cache key derived from Source.
	Key string `json:"key"`

	// Source is the location the payload was fetched from.
	Source string `json:"source"`

	// Payload is the raw dataset document.
	Payload json.RawMessage `json:"payload"`

	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// TTLSeconds is kept for reference when inspecting cache files by hand.
	TTLSeconds int `json:"ttl_seconds"`
}

// NewEntry creates an entry fetched now that expires after ttlSeconds.
func NewEntry(key, source string, payload json.RawMessage, ttlSeconds int) *Entry {
	now := time.Now()
	return &Entry{
		Key:        key,
		Source:     source,
		Payload:    payload,
		FetchedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// IsExpired reports whether the current time is past ExpiresAt.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Age returns the time since the payload was fetched.
func (e *Entry) Age() time.Duration {
	return time.Since(e.FetchedAt)
}

// TimeUntilExpiration returns the remaining lifetime, or 0 once expired.
func (e *Entry) TimeUntilExpiration() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarshalJSON writes timestamps as RFC3339 so cache files stay readable.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	return json.Marshal(&struct {
		*alias

		FetchedAt string `json:"fetched_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		alias:     (*alias)(e),
		FetchedAt: e.FetchedAt.Format(time.RFC3339),
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339),
	})
}

// UnmarshalJSON parses the RFC3339 timestamps written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type alias Entry
	aux := &struct {
		*alias

		FetchedAt string `json:"fetched_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		alias: (*alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.FetchedAt, err = time.Parse(time.RFC3339, aux.FetchedAt); err != nil {
		return err
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339, aux.ExpiresAt); err != nil {
		return err
	}
	return nil
}
