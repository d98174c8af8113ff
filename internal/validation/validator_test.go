// Beacon - Realtime Device Telemetry Relay
// Copyright 2026 Trailsense Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trailsense/beacon

package validation

import (
	"strings"
	"testing"
)

type reportFixture struct {
	ClientID  string  `validate:"required"`
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

func TestValidateStructPasses(t *testing.T) {
	req := reportFixture{ClientID: "dev1", Latitude: 48.85, Longitude: 2.35}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStructZeroCoordinatesValid(t *testing.T) {
	req := reportFixture{ClientID: "dev1", Latitude: 0, Longitude: 0}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("zero coordinates must validate: %v", err)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	req := reportFixture{Latitude: 1, Longitude: 2}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "ClientID is required") {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "ClientID" {
		t.Errorf("details = %v", apiErr.Details)
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := reportFixture{Latitude: 91, Longitude: -181}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("errors = %d, want 3", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("details fields = %v", apiErr.Details)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}

func TestTranslateRangeTags(t *testing.T) {
	type fixture struct {
		Count int `validate:"gte=1,lte=10"`
	}

	err := ValidateStruct(&fixture{Count: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "greater than or equal to 1") {
		t.Errorf("message = %q", err.Error())
	}
}
