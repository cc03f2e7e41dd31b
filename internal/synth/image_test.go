package synth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/service/ai"
)

type imageCall struct {
	prompt   string
	hadPhoto bool
	mimeType string
}

type fakeImageGen struct {
	calls     []imageCall
	failFirst bool
	failAll   bool
}

func (f *fakeImageGen) GenerateImage(_ context.Context, prompt string, photo *ai.ImageInput) (*ai.ImageResult, error) {
	call := imageCall{prompt: prompt, hadPhoto: photo != nil}
	if photo != nil {
		call.mimeType = photo.MIMEType
	}
	f.calls = append(f.calls, call)

	if f.failAll || (f.failFirst && len(f.calls) == 1) {
		return nil, fmt.Errorf("image model unavailable")
	}
	return &ai.ImageResult{MIMEType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}, nil
}

func testCard() *domain.Card {
	card := domain.DefaultCard("Jo Kim", "CTO")
	card.Archetype.Name = "The Operator"
	return card
}

func TestSynthesizeUsesReferencePhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake png bytes"))
	}))
	defer srv.Close()

	gen := &fakeImageGen{}
	s := NewImageSynthesizer(gen, zap.NewNop())

	ref := s.Synthesize(context.Background(), testCard(), srv.URL)
	if !strings.HasPrefix(ref, "data:image/png;base64,") {
		t.Fatalf("expected png data URI, got %q", ref)
	}
	if len(gen.calls) != 1 || !gen.calls[0].hadPhoto {
		t.Fatalf("expected a single photo-conditioned call, got %+v", gen.calls)
	}
	if gen.calls[0].mimeType != "image/png" {
		t.Fatalf("served content type lost: %q", gen.calls[0].mimeType)
	}
}

func TestSynthesizeFallsBackWhenPhotoFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gen := &fakeImageGen{}
	s := NewImageSynthesizer(gen, zap.NewNop())

	ref := s.Synthesize(context.Background(), testCard(), srv.URL)
	if ref == "" {
		t.Fatalf("described-portrait tier should still produce an image")
	}
	if len(gen.calls) != 1 || gen.calls[0].hadPhoto {
		t.Fatalf("expected one text-only call, got %+v", gen.calls)
	}
}

func TestSynthesizeFallsBackWhenConditionedCallFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("fake jpeg bytes"))
	}))
	defer srv.Close()

	gen := &fakeImageGen{failFirst: true}
	s := NewImageSynthesizer(gen, zap.NewNop())

	ref := s.Synthesize(context.Background(), testCard(), srv.URL)
	if ref == "" {
		t.Fatalf("second tier should have produced an image")
	}
	if len(gen.calls) != 2 {
		t.Fatalf("expected two tiers, got %d calls", len(gen.calls))
	}
	if !gen.calls[0].hadPhoto || gen.calls[1].hadPhoto {
		t.Fatalf("tier order wrong: %+v", gen.calls)
	}
}

func TestSynthesizeReturnsEmptyWhenAllTiersFail(t *testing.T) {
	gen := &fakeImageGen{failAll: true}
	s := NewImageSynthesizer(gen, zap.NewNop())

	if ref := s.Synthesize(context.Background(), testCard(), ""); ref != "" {
		t.Fatalf("expected no image, got %q", ref)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("no photo URL means a single text-only attempt, got %d", len(gen.calls))
	}
}

func TestFetchPhotoDefaultsNonImageContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x01, 0x02, 0x03})
	}))
	defer srv.Close()

	s := NewImageSynthesizer(&fakeImageGen{}, zap.NewNop())
	photo, err := s.fetchPhoto(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if photo.MIMEType != "image/jpeg" {
		t.Fatalf("expected default MIME type, got %q", photo.MIMEType)
	}
}

func TestFetchPhotoRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))
	defer srv.Close()

	s := NewImageSynthesizer(&fakeImageGen{}, zap.NewNop())
	if _, err := s.fetchPhoto(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for empty photo body")
	}
}
