// Package snapshot persists the last successful agenda payload per cache key
// so the UI can paint before the first fetch completes and keeps prior
// content across restarts when the backend is unreachable. Snapshots are
// derived data only, never the source of truth.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/trip"
)

// Payload is the bucketed agenda content saved for one cache key.
type Payload struct {
	Tasks   []*plan.Task  `json:"tasks,omitempty"`
	Trips   []*trip.Trip  `json:"trips,omitempty"`
	Habits  []*plan.Habit `json:"habits,omitempty"`
	SavedAt time.Time     `json:"saved_at"`
}

// Store wraps diskv with cache-key-safe filenames.
type Store struct {
	d *diskv.Diskv
}

// Open creates a snapshot store rooted at basePath.
func Open(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

// Cache keys contain ':' and date separators, so filenames are the encoded key.
func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: base64.RawURLEncoding.EncodeToString([]byte(key)) + ".json",
	}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	name := pk.FileName
	if len(name) > len(".json") {
		name = name[:len(name)-len(".json")]
	}
	decoded, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return pk.FileName
	}
	return string(decoded)
}

// Save writes the payload for a cache key, stamping SavedAt when unset.
func (s *Store) Save(key string, p Payload) error {
	if s == nil || s.d == nil {
		return nil
	}
	if p.SavedAt.IsZero() {
		p.SavedAt = time.Now()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("snapshot: encode %q: %w", key, err)
	}
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("snapshot: write %q: %w", key, err)
	}
	return nil
}

// Load reads the payload for a cache key, reporting whether one existed.
func (s *Store) Load(key string) (Payload, bool) {
	if s == nil || s.d == nil {
		return Payload{}, false
	}
	data, err := s.d.Read(key)
	if err != nil {
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, false
	}
	return p, true
}

// Erase drops the payload for a cache key.
func (s *Store) Erase(key string) error {
	if s == nil || s.d == nil {
		return nil
	}
	return s.d.Erase(key)
}
