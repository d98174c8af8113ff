// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

// Package storage provides the external sink that captured image bytes are
// written to. The relay core only holds a filename reference; the bytes
// themselves leave the process through this boundary.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trailsense/beacon/internal/logging"
)

// ImageSink stores captured image bytes outside the relay core and returns
// the stored filename. Implementations may block on I/O; callers must not
// hold anything shared across clients while writing.
type ImageSink interface {
	Write(clientID string, data []byte, ext string) (string, error)
}

// FilesystemSink writes images under a single directory, one file per
// capture, named <clientID>_<unixnano>.<ext>.
type FilesystemSink struct {
	dir string
	now func() time.Time
}

// NewFilesystemSink creates the target directory if needed and returns a
// sink writing into it.
func NewFilesystemSink(dir string) (*FilesystemSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory %s: %w", dir, err)
	}
	return &FilesystemSink{dir: dir, now: time.Now}, nil
}

// Write stores the image bytes and returns the stored filename (not the full
// path; the directory is deployment configuration, the filename is state).
func (s *FilesystemSink) Write(clientID string, data []byte, ext string) (string, error) {
	filename := fmt.Sprintf("%s_%d.%s", sanitizeFilename(clientID), s.now().UnixNano(), ext)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", filename, err)
	}

	logging.Debug().Str("client_id", clientID).Str("filename", filename).Int("bytes", len(data)).Msg("image stored")
	return filename, nil
}

// sanitizeFilename strips path separators and other hostile characters from a
// caller-supplied identifier before it becomes part of a filename.
func sanitizeFilename(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "client"
	}
	return string(out)
}
