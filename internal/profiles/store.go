// Package profiles persists named solver profiles and the autosaved
// editor state. Two backends exist: a single-file JSON store and a
// Postgres store; the server picks one from config.
package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the named profile does not exist.
	ErrNotFound = errors.New("profile not found")
	// ErrExists is returned by Save when the profile exists and
	// overwrite was not requested.
	ErrExists = errors.New("profile already exists")
)

// timeLayout matches the timestamp format stored in user data files.
const timeLayout = "2006-01-02 15:04:05"

// MenuItem is one line of a saved menu. Amounts are in grams.
type MenuItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	AmountG float64 `json:"amount_g"`
	Price   float64 `json:"price,omitempty"`
}

// Summary holds the cheap aggregates shown in the profile list.
type Summary struct {
	Cost      float64 `json:"cost"`
	Mass      float64 `json:"mass"`
	ItemCount int     `json:"item_count"`
}

// Profile is a named snapshot of a solver configuration and its menu.
// Config is kept opaque so clients round-trip their own settings.
type Profile struct {
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	Menu      []MenuItem      `json:"menu"`
	Summary   Summary         `json:"summary"`
	UpdatedAt string          `json:"updated_at"`
}

// State is the autosaved working state, independent of any profile.
type State struct {
	Config    json.RawMessage `json:"config"`
	Menu      []MenuItem      `json:"menu"`
	UpdatedAt string          `json:"updated_at"`
}

// ListEntry is the list view of a profile: name and summary, no body.
type ListEntry struct {
	Name      string  `json:"name"`
	UpdatedAt string  `json:"updated_at"`
	Summary   Summary `json:"summary"`
}

// Store is the persistence boundary for profiles and state.
type Store interface {
	// List returns profile summaries and the last active profile name
	// (empty when unset).
	List(ctx context.Context) ([]ListEntry, string, error)
	Get(ctx context.Context, name string) (*Profile, error)
	// Save stores the profile and marks it as last active. It returns
	// ErrExists when the name is taken and overwrite is false.
	Save(ctx context.Context, name string, config json.RawMessage, menu []MenuItem, overwrite bool) (*Profile, error)
	// Delete removes the profile, clearing the last-profile pointer if
	// it referred to it. Deleting a missing profile is not an error.
	Delete(ctx context.Context, name string) error
	SetLast(ctx context.Context, name string) error
	LatestState(ctx context.Context) (*State, error)
	SaveLatestState(ctx context.Context, config json.RawMessage, menu []MenuItem) error
	// Export returns the whole store as a JSON document for download.
	Export(ctx context.Context) (json.RawMessage, error)
	Close()
}

func summarize(menu []MenuItem) Summary {
	var s Summary
	for _, item := range menu {
		s.Cost += item.Price * item.AmountG / 100.0
		s.Mass += item.AmountG
	}
	s.ItemCount = len(menu)
	return s
}

func now() string {
	return time.Now().Format(timeLayout)
}
