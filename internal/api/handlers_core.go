// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package api

import (
	"errors"
	"net/http"

	"github.com/trailsense/beacon/internal/dispatch"
	"github.com/trailsense/beacon/internal/models"
)

// Report handles POST /api/v1/report: a client location report. Accepted
// reports update the client record and wake every admin console.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	rec, err := h.dispatcher.Report(req.ClientID, req.Latitude, req.Longitude)
	if err != nil {
		h.respondDispatchError(w, r, err)
		return
	}

	respondOK(w, r, rec)
}

// Consent handles POST /api/v1/consent: a client's sharing decision.
func (h *Handler) Consent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	rec, err := h.dispatcher.Consent(req.ClientID, models.Consent{
		ShareLocation:      req.ShareLocation,
		ShareCamera:        req.ShareCamera,
		ShareNotifications: req.ShareNotifications,
	})
	if err != nil {
		h.respondDispatchError(w, r, err)
		return
	}

	respondOK(w, r, rec)
}

// Capture handles POST /api/v1/capture: an image carried as a base64 data
// URL. The bytes go to the image sink; the record keeps only the filename.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	filename, err := h.dispatcher.Capture(req.ClientID, req.Image)
	if err != nil {
		h.respondDispatchError(w, r, err)
		return
	}

	respondOK(w, r, models.CaptureResult{Filename: filename})
}

// Clients handles GET /api/v1/clients: a snapshot of every tracked client.
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, h.store.SnapshotAll())
}

// Routes handles GET /api/v1/routes: the full path history per client, for
// drawing travelled routes on the admin map.
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.SnapshotAll()
	routes := make(map[string][]models.PathPoint, len(snapshot))
	for id, rec := range snapshot {
		routes[id] = rec.Path
	}
	respondOK(w, r, routes)
}

// respondDispatchError maps dispatcher errors onto HTTP statuses: invalid
// input is the caller's fault, a sink failure is ours.
func (h *Handler) respondDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dispatch.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, dispatch.ErrSinkWrite):
		respondError(w, r, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store image", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}
