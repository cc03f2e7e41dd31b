package domain

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/constants"
	"github.com/kapu/career-card-go/internal/util"
	"github.com/kapu/career-card-go/pkg/errors"
)

// Element is the fixed archetype taxonomy.
type Element string

const (
	ElementData     Element = "data"
	ElementChaos    Element = "chaos"
	ElementStrategy Element = "strategy"
	ElementShipping Element = "shipping"
	ElementPolitics Element = "politics"
	ElementVision   Element = "vision"
)

var validElements = map[Element]bool{
	ElementData:     true,
	ElementChaos:    true,
	ElementStrategy: true,
	ElementShipping: true,
	ElementPolitics: true,
	ElementVision:   true,
}

// Origin tags where a resolved card came from.
type Origin string

const (
	OriginCorpus      Origin = "corpus"
	OriginCache       Origin = "cache"
	OriginSynthesized Origin = "synthesized"
)

// Card shape contract
const (
	RoastCount         = 4
	MoveCount          = 3
	GapCount           = 3
	RoadmapPhaseCount  = 4
	RoadmapActionCount = 2

	MinEnergy = 1
	MaxEnergy = 4
	MinDamage = 40
	MaxDamage = 150
	MinScore  = 0
	MaxScore  = 99
)

// Request is the inbound generation request. It lives for a single call.
type Request struct {
	Name            string `json:"name"`
	Aspiration      string `json:"aspiration"`
	PhotoURL        string `json:"photo_url,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ForceRegenerate bool   `json:"force_regenerate,omitempty"`
}

// Validate rejects malformed requests before any pipeline stage runs.
func (r *Request) Validate() error {
	name := strings.TrimSpace(r.Name)
	if utf8.RuneCountInString(name) < constants.InputLimits.MinNameLength {
		return errors.NewValidationError("subject name too short", "name", r.Name)
	}
	if _, ok := LookupAspiration(r.Aspiration); !ok {
		return errors.NewValidationError("unknown aspiration key", "aspiration", r.Aspiration)
	}
	return nil
}

// Archetype is the categorical character class assigned to a card.
type Archetype struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	Element     Element `json:"element"`
	Flavor      string  `json:"flavor"`
	Stage       string  `json:"stage"`
	Weakness    string  `json:"weakness"`
}

// Move is one attack on the card.
type Move struct {
	Name   string `json:"name"`
	Energy int    `json:"energy"`
	Damage int    `json:"damage"`
	Effect string `json:"effect"`
}

// Stats holds the three capability sub-scores.
type Stats struct {
	Technical int `json:"technical"`
	Execution int `json:"execution"`
	Influence int `json:"influence"`
}

// RoadmapPhase is one step of the growth roadmap.
type RoadmapPhase struct {
	Month   int      `json:"month"`
	Title   string   `json:"title"`
	Actions []string `json:"actions"`
}

// Episode is a podcast-episode recommendation.
type Episode struct {
	Title  string `json:"title"`
	Guest  string `json:"guest"`
	Reason string `json:"reason"`
}

// Card is the immutable resolved result. Once assembled it is cached,
// persisted and returned, never updated in place.
type Card struct {
	Name      string         `json:"name"`
	Roasts    []string       `json:"roasts"`
	Archetype Archetype      `json:"archetype"`
	Moves     []Move         `json:"moves"`
	Score     int            `json:"score"`
	Stats     Stats          `json:"stats"`
	Gaps      []string       `json:"gaps"`
	Roadmap   []RoadmapPhase `json:"roadmap"`
	Episodes  []Episode      `json:"episodes"`
	Quote     string         `json:"quote"`
	Reaction  string         `json:"reaction"`
	Rival     string         `json:"rival"`
	ImageRef  string         `json:"image_ref,omitempty"`
}

// Resolution is the composed pipeline payload.
type Resolution struct {
	Origin    Origin `json:"origin"`
	WasCached bool   `json:"was_cached"`
	ShareID   string `json:"share_id"`
	Card      *Card  `json:"card"`
}

// DefaultArchetype is the neutral placeholder used when the generative step
// fails to produce a usable archetype.
func DefaultArchetype() Archetype {
	return Archetype{
		Name:        "The Wildcard",
		Description: "Hard to read, harder to predict, impossible to put in a planning estimate.",
		Emoji:       "🃏",
		Element:     ElementChaos,
		Flavor:      "Appeared out of nowhere. May ship out of nowhere too.",
		Stage:       "Mid-level",
		Weakness:    "scope creep",
	}
}

// DefaultMoves are the padding moves, self-consistent rather than error markers.
func DefaultMoves() []Move {
	return []Move{
		{Name: "Coffee-Driven Refactor", Energy: 1, Damage: 40, Effect: "Renames three variables and calls it architecture."},
		{Name: "Standup Filibuster", Energy: 2, Damage: 60, Effect: "Blocks all opposing questions for one sprint."},
		{Name: "Friday Deploy", Energy: 4, Damage: 150, Effect: "Massive damage to both sides. Flip a coin."},
	}
}

// DefaultGaps are the padding growth gaps.
func DefaultGaps() []string {
	return []string{
		"Ship something end to end instead of polishing the plan",
		"Ask for feedback before the retro forces it",
		"Learn to say no to the fourth side project",
	}
}

// DefaultRoadmap is the placeholder twelve-month plan.
func DefaultRoadmap() []RoadmapPhase {
	return []RoadmapPhase{
		{Month: 1, Title: "Stop the bleeding", Actions: []string{"Pick one skill gap and attack it daily", "Find one person doing the target job and study them"}},
		{Month: 3, Title: "Build in public", Actions: []string{"Publish one small project", "Collect brutal feedback and keep notes"}},
		{Month: 6, Title: "Stack proof", Actions: []string{"Take on work slightly above your level", "Document every win somewhere visible"}},
		{Month: 12, Title: "Make the jump", Actions: []string{"Apply or pitch before feeling ready", "Negotiate like the card says you should"}},
	}
}

// DefaultEpisode is the generic podcast-browsing suggestion used when the
// model returns nothing usable.
func DefaultEpisode() Episode {
	return Episode{
		Title:  "Browse the archive",
		Guest:  "someone one step ahead of you",
		Reason: "Pick any episode with a guest in the target role and steal their playbook.",
	}
}

const (
	defaultQuote = "I'm not behind schedule, the schedule is ahead of me."
	defaultScore = 50
)

// DefaultCard builds a fully populated placeholder card for a subject. The
// synthesizer overlays parsed model output on top of these values, so a
// partially broken response still yields a presentable card.
func DefaultCard(subject, aspirationLabel string) *Card {
	return &Card{
		Name:      subject,
		Roasts:    defaultRoasts(),
		Archetype: DefaultArchetype(),
		Moves:     DefaultMoves(),
		Score:     defaultScore,
		Stats:     Stats{Technical: defaultScore, Execution: defaultScore, Influence: defaultScore},
		Gaps:      DefaultGaps(),
		Roadmap:   DefaultRoadmap(),
		Episodes:  []Episode{},
		Quote:     defaultQuote,
		Reaction:  subject + " vs " + aspirationLabel + ": the gap is visible from orbit, but so is the trajectory.",
		Rival:     "Whoever merged to main five minutes before you.",
	}
}

func defaultRoasts() []string {
	return []string{
		"Calendar full of meetings about the work, empty of the work.",
		"Reads about deliberate practice instead of practicing.",
		"LinkedIn headline three promotions ahead of the resume.",
		"Side projects folder is a museum of week-two abandonments.",
	}
}

// Normalize enforces the card invariants as a total function: fixed array
// lengths are padded or truncated, the element is coerced into the taxonomy,
// and bounded numerics are clamped. Clamping is logged because an
// out-of-range value coming off the model silently violates the contract.
func (c *Card) Normalize(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c.Roasts = padStrings(c.Roasts, RoastCount, defaultRoasts())
	c.Gaps = padStrings(c.Gaps, GapCount, DefaultGaps())

	if !validElements[c.Archetype.Element] {
		logger.Warn("Unknown archetype element, coercing",
			zap.String("element", string(c.Archetype.Element)),
		)
		c.Archetype.Element = ElementChaos
	}

	c.normalizeMoves(logger)
	c.normalizeRoadmap()
	c.normalizeScores(logger)

	if c.Episodes == nil {
		c.Episodes = []Episode{}
	}
}

func (c *Card) normalizeMoves(logger *zap.Logger) {
	defaults := DefaultMoves()
	if len(c.Moves) > MoveCount {
		c.Moves = c.Moves[:MoveCount]
	}
	for len(c.Moves) < MoveCount {
		c.Moves = append(c.Moves, defaults[len(c.Moves)])
	}
	for i := range c.Moves {
		var clamped bool
		if c.Moves[i].Energy, clamped = util.ClampInt(c.Moves[i].Energy, MinEnergy, MaxEnergy); clamped {
			logger.Warn("Move energy out of range, clamped",
				zap.String("move", c.Moves[i].Name),
				zap.Int("energy", c.Moves[i].Energy),
			)
		}
		if c.Moves[i].Damage, clamped = util.ClampInt(c.Moves[i].Damage, MinDamage, MaxDamage); clamped {
			logger.Warn("Move damage out of range, clamped",
				zap.String("move", c.Moves[i].Name),
				zap.Int("damage", c.Moves[i].Damage),
			)
		}
	}
}

func (c *Card) normalizeRoadmap() {
	defaults := DefaultRoadmap()
	if len(c.Roadmap) > RoadmapPhaseCount {
		c.Roadmap = c.Roadmap[:RoadmapPhaseCount]
	}
	for len(c.Roadmap) < RoadmapPhaseCount {
		c.Roadmap = append(c.Roadmap, defaults[len(c.Roadmap)])
	}
	for i := range c.Roadmap {
		phase := &c.Roadmap[i]
		if phase.Month <= 0 {
			phase.Month = defaults[i].Month
		}
		if strings.TrimSpace(phase.Title) == "" {
			phase.Title = defaults[i].Title
		}
		if len(phase.Actions) > RoadmapActionCount {
			phase.Actions = phase.Actions[:RoadmapActionCount]
		}
		for len(phase.Actions) < RoadmapActionCount {
			phase.Actions = append(phase.Actions, defaults[i].Actions[len(phase.Actions)])
		}
	}
}

func (c *Card) normalizeScores(logger *zap.Logger) {
	clampScore := func(field string, v int) int {
		out, clamped := util.ClampInt(v, MinScore, MaxScore)
		if clamped {
			logger.Warn("Score out of range, clamped",
				zap.String("field", field),
				zap.Int("value", v),
			)
		}
		return out
	}
	c.Score = clampScore("score", c.Score)
	c.Stats.Technical = clampScore("stats.technical", c.Stats.Technical)
	c.Stats.Execution = clampScore("stats.execution", c.Stats.Execution)
	c.Stats.Influence = clampScore("stats.influence", c.Stats.Influence)
}

func padStrings(in []string, want int, defaults []string) []string {
	out := make([]string, 0, want)
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
		if len(out) == want {
			return out
		}
	}
	for len(out) < want {
		out = append(out, defaults[len(out)])
	}
	return out
}
