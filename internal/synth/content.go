// Package synth turns a validated request into card content and an optional
// portrait via the generative models. Content synthesis is total: any parsed
// model output is overlaid on a fully populated default card, so a partially
// broken response still yields a presentable result. Only the complete
// absence of a structured block is a failure.
package synth

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/constants"
	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/prompt"
	"github.com/kapu/career-card-go/internal/service/ai"
	"github.com/kapu/career-card-go/internal/util"
	"github.com/kapu/career-card-go/pkg/errors"
)

// TextGenerator is the slice of the model manager the content synthesizer
// needs. Narrowed for test substitution.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, preset ai.ModelPreset, opts *ai.GenerateOptions) (string, *ai.GenerateMetadata, error)
}

type ContentSynthesizer struct {
	generator TextGenerator
	logger    *zap.Logger
}

func NewContentSynthesizer(generator TextGenerator, logger *zap.Logger) *ContentSynthesizer {
	return &ContentSynthesizer{
		generator: generator,
		logger:    logger,
	}
}

// Synthesize generates card content for a subject. The returned card is
// always fully shaped and normalized; an error means no usable structured
// output could be obtained at all.
func (s *ContentSynthesizer) Synthesize(ctx context.Context, subject string, aspiration domain.AspirationInfo, bio string) (*domain.Card, error) {
	subject = util.CollapseWhitespace(strings.TrimSpace(subject))
	bio = util.CutRunes(strings.TrimSpace(bio), constants.InputLimits.MaxBioLength)

	cardPrompt := prompt.BuildCardPrompt(prompt.CardPromptVars{
		Subject:               subject,
		AspirationLabel:       aspiration.Label,
		AspirationDescription: aspiration.Description,
		Bio:                   bio,
	})

	text, meta, err := s.generator.GenerateText(ctx, cardPrompt, ai.PresetCreative, &ai.GenerateOptions{JSONMode: true})
	if err != nil {
		return nil, errors.NewGenerationError("content generation failed", "content", err)
	}

	raw := extractJSONObject(text)
	if raw == "" {
		s.logger.Error("No structured block in model response",
			zap.String("subject", subject),
			zap.Int("response_length", len(text)),
		)
		return nil, errors.NewGenerationError("model response contained no structured content", "content", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		s.logger.Error("Structured block not parseable",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return nil, errors.NewGenerationError("model response contained no structured content", "content", err)
	}

	card := domain.DefaultCard(subject, aspiration.Label)
	s.decodePayload(fields, subject).applyTo(card)
	card.Normalize(s.logger)

	s.logger.Info("Card content synthesized",
		zap.String("subject", subject),
		zap.String("aspiration", string(aspiration.Key)),
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.Bool("used_fallback", meta.UsedFallback),
		zap.Int("score", card.Score),
	)

	return card, nil
}

// contentPayload mirrors the response shape the prompt asks for. Pointer
// fields distinguish "absent" from zero so defaults survive partial output.
type contentPayload struct {
	Roasts    []string              `json:"roasts"`
	Archetype *archetypePayload     `json:"archetype"`
	Moves     []domain.Move         `json:"moves"`
	Score     *int                  `json:"score"`
	Stats     *statsPayload         `json:"stats"`
	Gaps      []string              `json:"gaps"`
	Roadmap   []domain.RoadmapPhase `json:"roadmap"`
	Episodes  []domain.Episode      `json:"episodes"`
	Quote     string                `json:"quote"`
	Reaction  string                `json:"reaction"`
	Rival     string                `json:"rival"`
}

type archetypePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Element     string `json:"element"`
	Flavor      string `json:"flavor"`
	Stage       string `json:"stage"`
	Weakness    string `json:"weakness"`
}

type statsPayload struct {
	Technical *int `json:"technical"`
	Execution *int `json:"execution"`
	Influence *int `json:"influence"`
}

// decodePayload unmarshals each response field independently, so one
// mis-typed field falls back to its default instead of discarding the whole
// response. Only a block that is not a JSON object at all is fatal, and the
// caller has already ruled that out.
func (s *ContentSynthesizer) decodePayload(fields map[string]json.RawMessage, subject string) *contentPayload {
	p := &contentPayload{}
	decodeField(s, fields, subject, "roasts", &p.Roasts)
	decodeField(s, fields, subject, "archetype", &p.Archetype)
	decodeField(s, fields, subject, "moves", &p.Moves)
	decodeField(s, fields, subject, "score", &p.Score)
	decodeField(s, fields, subject, "stats", &p.Stats)
	decodeField(s, fields, subject, "gaps", &p.Gaps)
	decodeField(s, fields, subject, "roadmap", &p.Roadmap)
	decodeField(s, fields, subject, "episodes", &p.Episodes)
	decodeField(s, fields, subject, "quote", &p.Quote)
	decodeField(s, fields, subject, "reaction", &p.Reaction)
	decodeField(s, fields, subject, "rival", &p.Rival)
	return p
}

func decodeField[T any](s *ContentSynthesizer, fields map[string]json.RawMessage, subject, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("Mis-shaped response field dropped",
			zap.String("subject", subject),
			zap.String("field", key),
			zap.Error(err),
		)
		return
	}
	*dst = v
}

func (p *contentPayload) applyTo(card *domain.Card) {
	if len(p.Roasts) > 0 {
		card.Roasts = p.Roasts
	}
	if p.Archetype != nil {
		p.Archetype.applyTo(&card.Archetype)
	}
	if len(p.Moves) > 0 {
		card.Moves = p.Moves
	}
	if p.Score != nil {
		card.Score = *p.Score
	}
	if p.Stats != nil {
		if p.Stats.Technical != nil {
			card.Stats.Technical = *p.Stats.Technical
		}
		if p.Stats.Execution != nil {
			card.Stats.Execution = *p.Stats.Execution
		}
		if p.Stats.Influence != nil {
			card.Stats.Influence = *p.Stats.Influence
		}
	}
	if len(p.Gaps) > 0 {
		card.Gaps = p.Gaps
	}
	if len(p.Roadmap) > 0 {
		card.Roadmap = p.Roadmap
	}
	if len(p.Episodes) > 0 {
		card.Episodes = p.Episodes
	}
	if strings.TrimSpace(p.Quote) != "" {
		card.Quote = p.Quote
	}
	if strings.TrimSpace(p.Reaction) != "" {
		card.Reaction = p.Reaction
	}
	if strings.TrimSpace(p.Rival) != "" {
		card.Rival = p.Rival
	}
}

func (a *archetypePayload) applyTo(dst *domain.Archetype) {
	if strings.TrimSpace(a.Name) != "" {
		dst.Name = a.Name
	}
	if strings.TrimSpace(a.Description) != "" {
		dst.Description = a.Description
	}
	if strings.TrimSpace(a.Emoji) != "" {
		dst.Emoji = a.Emoji
	}
	if strings.TrimSpace(a.Element) != "" {
		dst.Element = domain.Element(strings.ToLower(strings.TrimSpace(a.Element)))
	}
	if strings.TrimSpace(a.Flavor) != "" {
		dst.Flavor = a.Flavor
	}
	if strings.TrimSpace(a.Stage) != "" {
		dst.Stage = a.Stage
	}
	if strings.TrimSpace(a.Weakness) != "" {
		dst.Weakness = a.Weakness
	}
}

// extractJSONObject returns the first balanced top-level JSON object in s,
// or "" when none exists. Braces inside string literals are skipped, so
// prose or markdown fences around the object do not matter.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
