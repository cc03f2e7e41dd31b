package synth

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/constants"
	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/prompt"
	"github.com/kapu/career-card-go/internal/service/ai"
)

// ImageGenerator is the slice of the model manager the image synthesizer
// needs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, photo *ai.ImageInput) (*ai.ImageResult, error)
}

// ImageSynthesizer produces an optional portrait for a synthesized card.
// Two tiers: a photo-conditioned call when the request carried a usable
// reference photo, then a text-only call. Every failure degrades to the
// next tier and the last tier degrades to "no image"; nothing here is ever
// fatal to a request.
type ImageSynthesizer struct {
	generator  ImageGenerator
	httpClient *http.Client
	logger     *zap.Logger
}

func NewImageSynthesizer(generator ImageGenerator, logger *zap.Logger) *ImageSynthesizer {
	return &ImageSynthesizer{
		generator: generator,
		httpClient: &http.Client{
			Timeout: constants.StageTimeouts.PhotoFetch,
		},
		logger: logger,
	}
}

// Synthesize returns a data URI for the generated portrait, or "" when no
// image could be produced.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, card *domain.Card, photoURL string) string {
	vars := prompt.ImagePromptVars{
		Subject:        card.Name,
		ArchetypeName:  card.Archetype.Name,
		ArchetypeEmoji: card.Archetype.Emoji,
		Element:        string(card.Archetype.Element),
		Flavor:         card.Archetype.Flavor,
	}

	if photoURL != "" {
		photo, err := s.fetchPhoto(ctx, photoURL)
		if err != nil {
			s.logger.Warn("Reference photo unusable, falling back to described portrait",
				zap.String("subject", card.Name),
				zap.Error(err),
			)
		} else {
			result, err := s.generator.GenerateImage(ctx, prompt.BuildPhotoPortraitPrompt(vars), photo)
			if err == nil {
				s.logger.Info("Portrait generated from reference photo",
					zap.String("subject", card.Name),
					zap.Int("bytes", len(result.Data)),
				)
				return toDataURI(result)
			}
			s.logger.Warn("Photo-conditioned portrait failed, falling back",
				zap.String("subject", card.Name),
				zap.Error(err),
			)
		}
	}

	result, err := s.generator.GenerateImage(ctx, prompt.BuildDescribedPortraitPrompt(vars), nil)
	if err != nil {
		s.logger.Warn("Described portrait failed, returning card without image",
			zap.String("subject", card.Name),
			zap.Error(err),
		)
		return ""
	}

	s.logger.Info("Portrait generated from description",
		zap.String("subject", card.Name),
		zap.Int("bytes", len(result.Data)),
	)
	return toDataURI(result)
}

// fetchPhoto downloads the reference photo with a size cap. The served
// content type wins when present; some CDNs omit it, so the default MIME
// type fills the gap.
func (s *ImageSynthesizer) fetchPhoto(ctx context.Context, url string) (*ai.ImageInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid photo url: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.ImageConfig.MaxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("photo read failed: %w", err)
	}
	if int64(len(data)) > constants.ImageConfig.MaxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", constants.ImageConfig.MaxPhotoBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("photo response was empty")
	}

	mimeType := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = constants.ImageConfig.DefaultMIMEType
	}

	return &ai.ImageInput{MIMEType: mimeType, Data: data}, nil
}

func toDataURI(result *ai.ImageResult) string {
	return "data:" + result.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(result.Data)
}
