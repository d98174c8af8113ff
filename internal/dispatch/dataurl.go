// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package dispatch

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// extensions maps image subtypes to the file extension used by the sink.
var extensions = map[string]string{
	"jpeg": "jpg",
	"jpg":  "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// parseImageDataURL decodes a "data:image/<subtype>;base64,<payload>" URL
// into raw bytes and a file extension. Anything else fails with
// ErrInvalidInput; partial state is never produced.
func parseImageDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return nil, "", fmt.Errorf("%w: image must be an image data URL", ErrInvalidInput)
	}

	subtype, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("%w: image data URL must be base64-encoded", ErrInvalidInput)
	}

	ext, ok := extensions[strings.ToLower(subtype)]
	if !ok {
		return nil, "", fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, subtype)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64 payload", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image payload", ErrInvalidInput)
	}
	return data, ext, nil
}
