// Package codec implements the stateless shareable-card wire format: a
// short-keyed projection of a card serialized to JSON and encoded with a
// URL-path-safe alphabet. The format is durable: field keys and truncation
// ceilings must not change incompatibly.
package codec

import (
	"encoding/base64"
	"encoding/json"

	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/util"
)

// Truncation ceilings (runes). Free text is hard-cut before encoding to
// bound total URL length; no continuation marker is added.
const (
	MaxName          = 30
	MaxArchetypeName = 30
	MaxDescription   = 95
	MaxQuote         = 140
	MaxReaction      = 140
	MaxRoast         = 120
	MaxFlavor        = 90
	MaxWeakness      = 20
	MaxStage         = 20
	MaxMoveName      = 24
	MaxMoveEffect    = 90
	MaxGap           = 60
	MaxRoadmapTitle  = 40
	MaxRoadmapAction = 60
	MaxEpisodeField  = 60
	MaxRival         = 80
)

// SharedCard is the decoded payload of a share link.
type SharedCard struct {
	Card       *domain.Card `json:"card"`
	Aspiration string       `json:"aspiration"`
}

// wire is the short-keyed projection. Moves, roadmap phases and episodes are
// compact positional tuples. The image reference is deliberately not part of
// the wire format; links must stay short and the image is optional anyway.
type wire struct {
	S  int      `json:"s"`  // overall score
	N  string   `json:"n"`  // subject name
	An string   `json:"an"` // archetype name
	E  string   `json:"e"`  // emoji
	D  string   `json:"d"`  // archetype description
	L  string   `json:"l"`  // element
	G  string   `json:"g"`  // career stage
	W  string   `json:"w"`  // weakness
	F  string   `json:"f"`  // flavor text
	M  [][]any  `json:"m"`  // moves: [name, energy, damage, effect]
	C  []int    `json:"c"`  // capability scores: [technical, execution, influence]
	A  string   `json:"a"`  // aspiration key
	Q  string   `json:"q"`  // quote
	X  string   `json:"x"`  // reaction line
	Y  string   `json:"y"`  // rival line
	P  []string `json:"p"`  // gaps
	R  [][]any  `json:"r"`  // roadmap: [month, title, action1, action2]
	V  [][]any  `json:"v"`  // episodes: [title, guest, reason]
	T  []string `json:"t"`  // roast statements
}

// Encode projects a card into the compact wire shape and returns the
// URL-safe share token.
func Encode(card *domain.Card, aspiration string) string {
	w := wire{
		S:  card.Score,
		N:  util.CutRunes(card.Name, MaxName),
		An: util.CutRunes(card.Archetype.Name, MaxArchetypeName),
		E:  card.Archetype.Emoji,
		D:  util.CutRunes(card.Archetype.Description, MaxDescription),
		L:  string(card.Archetype.Element),
		G:  util.CutRunes(card.Archetype.Stage, MaxStage),
		W:  util.CutRunes(card.Archetype.Weakness, MaxWeakness),
		F:  util.CutRunes(card.Archetype.Flavor, MaxFlavor),
		C:  []int{card.Stats.Technical, card.Stats.Execution, card.Stats.Influence},
		A:  aspiration,
		Q:  util.CutRunes(card.Quote, MaxQuote),
		X:  util.CutRunes(card.Reaction, MaxReaction),
		Y:  util.CutRunes(card.Rival, MaxRival),
	}

	for _, m := range card.Moves {
		w.M = append(w.M, []any{
			util.CutRunes(m.Name, MaxMoveName), m.Energy, m.Damage,
			util.CutRunes(m.Effect, MaxMoveEffect),
		})
	}
	for _, g := range card.Gaps {
		w.P = append(w.P, util.CutRunes(g, MaxGap))
	}
	for _, ph := range card.Roadmap {
		tuple := []any{ph.Month, util.CutRunes(ph.Title, MaxRoadmapTitle)}
		for _, a := range ph.Actions {
			tuple = append(tuple, util.CutRunes(a, MaxRoadmapAction))
		}
		w.R = append(w.R, tuple)
	}
	for _, ep := range card.Episodes {
		w.V = append(w.V, []any{
			util.CutRunes(ep.Title, MaxEpisodeField),
			util.CutRunes(ep.Guest, MaxEpisodeField),
			util.CutRunes(ep.Reason, MaxEpisodeField),
		})
	}
	for _, r := range card.Roasts {
		w.T = append(w.T, util.CutRunes(r, MaxRoast))
	}

	// Marshal of a plain struct cannot fail; ignore the error like a
	// checked cast.
	data, _ := json.Marshal(w)
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode reverses Encode. Every failure mode (bad alphabet, bad JSON,
// mis-shaped tuples) collapses into the single "not decodable" outcome so
// link rendering can show a not-found state.
func Decode(token string) (*SharedCard, bool) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, false
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, false
	}
	if w.N == "" || len(w.C) != 3 {
		return nil, false
	}

	card := &domain.Card{
		Name: w.N,
		Archetype: domain.Archetype{
			Name:        w.An,
			Description: w.D,
			Emoji:       w.E,
			Element:     domain.Element(w.L),
			Flavor:      w.F,
			Stage:       w.G,
			Weakness:    w.W,
		},
		Score:    w.S,
		Stats:    domain.Stats{Technical: w.C[0], Execution: w.C[1], Influence: w.C[2]},
		Gaps:     w.P,
		Quote:    w.Q,
		Reaction: w.X,
		Rival:    w.Y,
		Roasts:   w.T,
		Episodes: []domain.Episode{},
	}

	for _, tuple := range w.M {
		move, ok := decodeMove(tuple)
		if !ok {
			return nil, false
		}
		card.Moves = append(card.Moves, move)
	}
	for _, tuple := range w.R {
		phase, ok := decodePhase(tuple)
		if !ok {
			return nil, false
		}
		card.Roadmap = append(card.Roadmap, phase)
	}
	for _, tuple := range w.V {
		ep, ok := decodeEpisode(tuple)
		if !ok {
			return nil, false
		}
		card.Episodes = append(card.Episodes, ep)
	}

	return &SharedCard{Card: card, Aspiration: w.A}, true
}

func decodeMove(tuple []any) (domain.Move, bool) {
	if len(tuple) != 4 {
		return domain.Move{}, false
	}
	name, ok1 := tuple[0].(string)
	energy, ok2 := asInt(tuple[1])
	damage, ok3 := asInt(tuple[2])
	effect, ok4 := tuple[3].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return domain.Move{}, false
	}
	return domain.Move{Name: name, Energy: energy, Damage: damage, Effect: effect}, true
}

func decodePhase(tuple []any) (domain.RoadmapPhase, bool) {
	if len(tuple) < 2 {
		return domain.RoadmapPhase{}, false
	}
	month, ok := asInt(tuple[0])
	if !ok {
		return domain.RoadmapPhase{}, false
	}
	title, ok := tuple[1].(string)
	if !ok {
		return domain.RoadmapPhase{}, false
	}
	actions := make([]string, 0, len(tuple)-2)
	for _, raw := range tuple[2:] {
		action, ok := raw.(string)
		if !ok {
			return domain.RoadmapPhase{}, false
		}
		actions = append(actions, action)
	}
	return domain.RoadmapPhase{Month: month, Title: title, Actions: actions}, true
}

func decodeEpisode(tuple []any) (domain.Episode, bool) {
	if len(tuple) != 3 {
		return domain.Episode{}, false
	}
	title, ok1 := tuple[0].(string)
	guest, ok2 := tuple[1].(string)
	reason, ok3 := tuple[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return domain.Episode{}, false
	}
	return domain.Episode{Title: title, Guest: guest, Reason: reason}, true
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}
