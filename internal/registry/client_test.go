// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mezuri/mezuri/pkg/version"
)

func mustTag(t *testing.T, raw string) version.Tag {
	t.Helper()
	tag, err := version.ParseTag(raw)
	if err != nil {
		t.Fatalf("ParseTag(%q) error = %v", raw, err)
	}
	return tag
}

func TestClientRegisterAndFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := newTestServer(t, &fakeVerifier{spec: json.RawMessage(`{"name": "weather"}`)})
	client := NewClient(srv.URL)

	op, err := client.RegisterOperator(ctx, "weather", "/tmp/weather")
	if err != nil {
		t.Fatalf("RegisterOperator() error = %v", err)
	}
	if op.Name != "weather" {
		t.Errorf("RegisterOperator() = %+v", op)
	}

	rec, err := client.RegisterVersion(ctx, "weather", mustTag(t, "mezuri/sources/0.1.0"), "abc")
	if err != nil {
		t.Fatalf("RegisterVersion() error = %v", err)
	}
	if rec.Version != "0.1.0" || rec.Hash != "abc" {
		t.Errorf("RegisterVersion() = %+v", rec)
	}

	got, err := client.GetOperator(ctx, "weather")
	if err != nil {
		t.Fatalf("GetOperator() error = %v", err)
	}
	if len(got.Versions) != 1 || got.Versions[0] != "0.1.0" {
		t.Errorf("Versions = %v", got.Versions)
	}

	versions, err := client.ListVersions(ctx, "weather")
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	if len(versions) != 1 || versions[0].Version != "0.1.0" {
		t.Errorf("ListVersions() = %+v", versions)
	}
}

func TestClientErrorTaxonomy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := newTestServer(t, &fakeVerifier{err: ErrHashMismatch})
	client := NewClient(srv.URL)

	// 404 maps to ErrNotFound.
	_, err := client.GetOperator(ctx, "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOperator(absent) error = %v, want ErrNotFound", err)
	}

	if _, err := client.RegisterOperator(ctx, "weather", "/tmp/weather"); err != nil {
		t.Fatalf("RegisterOperator() error = %v", err)
	}

	// 409 maps to ErrConflict.
	_, err = client.RegisterOperator(ctx, "weather", "/tmp/other")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("RegisterOperator() duplicate error = %v, want ErrConflict", err)
	}

	// Verification failures (400) map to the generic ErrRegistry.
	_, err = client.RegisterVersion(ctx, "weather", mustTag(t, "mezuri/sources/0.1.0"), "abc")
	if !errors.Is(err, ErrRegistry) {
		t.Errorf("RegisterVersion() error = %v, want ErrRegistry", err)
	}
	var regErr *RegistryError
	if !errors.As(err, &regErr) || regErr.StatusCode != 400 {
		t.Errorf("RegisterVersion() error = %v, want *RegistryError with status 400", err)
	}
}

func TestClientPushRegistersOperatorOnDemand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := newTestServer(t, &fakeVerifier{spec: json.RawMessage(`{}`)})
	client := NewClient(srv.URL)

	// First push: operator unknown, registered on the fly.
	rec, err := client.Push(ctx, "weather", "/tmp/weather", mustTag(t, "mezuri/sources/0.1.0"), "abc")
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if rec.Version != "0.1.0" {
		t.Errorf("Push() = %+v", rec)
	}

	// Second push of a new version: operator already known.
	if _, err := client.Push(ctx, "weather", "/tmp/weather", mustTag(t, "mezuri/sources/0.2.0"), "def"); err != nil {
		t.Fatalf("Push() second version error = %v", err)
	}

	// Repeating a completed push surfaces the conflict for the caller to
	// interpret as "already done".
	_, err = client.Push(ctx, "weather", "/tmp/weather", mustTag(t, "mezuri/sources/0.2.0"), "def")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Push() repeat error = %v, want ErrConflict", err)
	}
}
