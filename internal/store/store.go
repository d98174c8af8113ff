// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package store

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/trailsense/beacon/internal/models"
)

// ErrInvalidCoordinate is returned when a latitude or longitude is NaN or
// infinite. Zero is a valid coordinate.
var ErrInvalidCoordinate = errors.New("latitude/longitude must be finite numbers")

// record pairs a client record with its own mutex so that mutations for
// different clients never contend.
type record struct {
	mu  sync.Mutex
	rec models.ClientRecord
}

// Store is a concurrency-safe mapping from client identifier to that client's
// latest known state. The outer RWMutex only guards the map itself; per-client
// mutation serializes on the record's own mutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string]*record)}
}

// getOrCreate returns the record for id, creating it lazily.
func (s *Store) getOrCreate(id string) *record {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.records[id]; ok {
		return r
	}
	r = &record{rec: models.ClientRecord{ClientID: id}}
	s.records[id] = r
	return r
}

// UpsertLocation records a location report for id, appending to the client's
// path and updating location/lastSeen. The record is created if absent.
// Returns ErrInvalidCoordinate for non-finite coordinates, in which case the
// store is left untouched.
func (s *Store) UpsertLocation(id string, lat, lon float64, now time.Time) (models.ClientRecord, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return models.ClientRecord{}, ErrInvalidCoordinate
	}

	r := s.getOrCreate(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rec.Location = &models.Coordinate{Latitude: lat, Longitude: lon}
	r.rec.LastSeen = now
	r.rec.Path = append(r.rec.Path, models.PathPoint{Latitude: lat, Longitude: lon, Time: now})
	return r.rec.Clone(), nil
}

// UpsertConsent records the client's latest consent decision.
func (s *Store) UpsertConsent(id string, consent models.Consent, now time.Time) models.ClientRecord {
	r := s.getOrCreate(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	consent.Timestamp = now
	r.rec.Consent = &consent
	return r.rec.Clone()
}

// UpsertImage records a reference to the most recently captured image.
// The image bytes themselves live in the external sink.
func (s *Store) UpsertImage(id, filename string, now time.Time) models.ClientRecord {
	r := s.getOrCreate(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rec.LastImage = &models.ImageRef{Filename: filename, Timestamp: now}
	return r.rec.Clone()
}

// Get returns a snapshot of the record for id, if one exists.
func (s *Store) Get(id string) (models.ClientRecord, bool) {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return models.ClientRecord{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.Clone(), true
}

// SnapshotAll returns a point-in-time copy of every record. Each entry is
// internally consistent; writes that start after the call began may or may
// not be reflected.
func (s *Store) SnapshotAll() map[string]models.ClientRecord {
	s.mu.RLock()
	refs := make(map[string]*record, len(s.records))
	for id, r := range s.records {
		refs[id] = r
	}
	s.mu.RUnlock()

	out := make(map[string]models.ClientRecord, len(refs))
	for id, r := range refs {
		r.mu.Lock()
		out[id] = r.rec.Clone()
		r.mu.Unlock()
	}
	return out
}

// Len returns the number of known client records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// isFinite reports whether f is neither NaN nor infinite.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
