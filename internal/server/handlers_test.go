package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/codec"
	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/service/share"
	"github.com/kapu/career-card-go/pkg/errors"
)

type fakeResolver struct {
	resolution *domain.Resolution
	err        error
	requests   []*domain.Request
}

func (f *fakeResolver) Resolve(_ context.Context, req *domain.Request) (*domain.Resolution, error) {
	f.requests = append(f.requests, req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resolution, nil
}

type fakeShareReader struct {
	records map[string]*share.Record
	err     error
}

func (f *fakeShareReader) Get(_ context.Context, id string) (*share.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[id], nil
}

func newTestMux(resolver *fakeResolver, shares *fakeShareReader, redisUp bool, postgresUp bool) *http.ServeMux {
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	if shares == nil {
		shares = &fakeShareReader{records: map[string]*share.Record{}}
	}

	redisOK := func(context.Context) bool { return redisUp }
	postgresOK := func(context.Context) error {
		if postgresUp {
			return nil
		}
		return fmt.Errorf("postgres down")
	}

	mux := http.NewServeMux()
	NewHandlers(resolver, shares, redisOK, postgresOK, zap.NewNop()).Register(mux)
	return mux
}

func postCard(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cards", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateCardSuccess(t *testing.T) {
	card := domain.DefaultCard("Jo Kim", "CTO")
	resolver := &fakeResolver{
		resolution: &domain.Resolution{
			Origin:    domain.OriginSynthesized,
			WasCached: false,
			ShareID:   "abc123def0",
			Card:      card,
		},
	}
	mux := newTestMux(resolver, nil, true, true)

	rec := postCard(t, mux, `{"name":"Jo Kim","aspiration":"cto"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp cardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if resp.Origin != domain.OriginSynthesized || resp.ShareID != "abc123def0" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Card == nil || resp.Card.Name != "Jo Kim" {
		t.Fatalf("card missing from payload: %+v", resp)
	}

	decoded, ok := codec.Decode(resp.ShareToken)
	if !ok {
		t.Fatalf("share token must be decodable: %q", resp.ShareToken)
	}
	if decoded.Card.Name != "Jo Kim" || decoded.Aspiration != "cto" {
		t.Fatalf("share token payload wrong: %+v", decoded)
	}
}

func TestCreateCardRejectsMalformedBody(t *testing.T) {
	mux := newTestMux(nil, nil, true, true)

	rec := postCard(t, mux, `{"name": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestCreateCardRejectsInvalidRequests(t *testing.T) {
	mux := newTestMux(nil, nil, true, true)

	cases := []string{
		`{"name":"x","aspiration":"cto"}`,
		`{"name":"Jo Kim","aspiration":"wizard"}`,
		`{"name":"","aspiration":"cto"}`,
	}
	for _, body := range cases {
		rec := postCard(t, mux, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), errors.CodeValidation) {
			t.Fatalf("expected validation code in body: %s", rec.Body.String())
		}
	}
}

func TestCreateCardHidesGenerationDetails(t *testing.T) {
	resolver := &fakeResolver{
		err: errors.NewGenerationError("model response contained no structured content", "content", fmt.Errorf("upstream 500")),
	}
	mux := newTestMux(resolver, nil, true, true)

	rec := postCard(t, mux, `{"name":"Jo Kim","aspiration":"cto"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "upstream") || strings.Contains(body, "structured content") {
		t.Fatalf("internal details leaked to client: %s", body)
	}
	if !strings.Contains(body, errors.CodeGeneration) {
		t.Fatalf("expected generation error code, got %s", body)
	}
}

func TestGetCardPermalink(t *testing.T) {
	card := domain.DefaultCard("Jo Kim", "CTO")
	shares := &fakeShareReader{records: map[string]*share.Record{
		"abc123def0": {ID: "abc123def0", Aspiration: "cto", Card: card},
	}}
	mux := newTestMux(nil, shares, true, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/abc123def0", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var record share.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("record not decodable: %v", err)
	}
	if record.Card == nil || record.Card.Name != "Jo Kim" {
		t.Fatalf("unexpected record: %+v", record)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cards/missing0000", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestGetSharedToken(t *testing.T) {
	mux := newTestMux(nil, nil, true, true)

	token := codec.Encode(domain.DefaultCard("Jo Kim", "CTO"), "cto")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shared/"+token, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rec.Code)
	}

	var shared codec.SharedCard
	if err := json.Unmarshal(rec.Body.Bytes(), &shared); err != nil {
		t.Fatalf("shared payload not decodable: %v", err)
	}
	if shared.Card == nil || shared.Card.Name != "Jo Kim" || shared.Aspiration != "cto" {
		t.Fatalf("unexpected shared payload: %+v", shared)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/shared/garbage-token!", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for garbage token, got %d", rec.Code)
	}
}

func TestListAspirations(t *testing.T) {
	mux := newTestMux(nil, nil, true, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/aspirations", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Aspirations []domain.AspirationInfo `json:"aspirations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("aspirations not decodable: %v", err)
	}
	if len(resp.Aspirations) != len(domain.AllAspirations()) {
		t.Fatalf("expected full aspiration set, got %d", len(resp.Aspirations))
	}
}

func TestHealthzReflectsDependencyState(t *testing.T) {
	healthy := newTestMux(nil, nil, true, true)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when dependencies are up, got %d", rec.Code)
	}

	degraded := newTestMux(nil, nil, true, false)
	rec = httptest.NewRecorder()
	degraded.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when postgres is down, got %d", rec.Code)
	}
}
