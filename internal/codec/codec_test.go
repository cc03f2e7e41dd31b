package codec

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kapu/career-card-go/internal/domain"
)

func sampleCard() *domain.Card {
	return &domain.Card{
		Name: "Ada Lovelace",
		Roasts: []string{
			"Wrote the first program before hardware existed to ignore it.",
			"Estimates in decades, delivers in centuries.",
			"Documentation longer than the implementation.",
			"Still waiting on the compute budget.",
		},
		Archetype: domain.Archetype{
			Name:        "The Prophet",
			Description: "Sees the product three epochs before the market does.",
			Emoji:       "🔮",
			Element:     domain.ElementVision,
			Flavor:      "Shipped a vision, backordered the machine.",
			Stage:       "Legendary",
			Weakness:    "hardware",
		},
		Moves: []domain.Move{
			{Name: "Analytical Engine", Energy: 3, Damage: 120, Effect: "Opponent must re-estimate their roadmap."},
			{Name: "Footnote Flood", Energy: 2, Damage: 70, Effect: "Buries the rival in appendices."},
			{Name: "First Commit", Energy: 1, Damage: 40, Effect: "Cannot be reverted."},
		},
		Score: 97,
		Stats: domain.Stats{Technical: 99, Execution: 88, Influence: 95},
		Gaps: []string{
			"Find a machine that actually runs",
			"Delegate the appendices",
			"Charge consulting rates",
		},
		Roadmap: []domain.RoadmapPhase{
			{Month: 1, Title: "Audit the engine", Actions: []string{"List every missing gear", "Write the test plan"}},
			{Month: 3, Title: "Ship notes", Actions: []string{"Publish translation", "Add original analysis"}},
			{Month: 6, Title: "Scale up", Actions: []string{"Recruit machinists", "Secure funding"}},
			{Month: 12, Title: "Run it", Actions: []string{"Execute program one", "Take the victory lap"}},
		},
		Episodes: []domain.Episode{
			{Title: "Programming before computers", Guest: "Charles Babbage", Reason: "Context on the hardware roadmap."},
		},
		Quote:    "The engine weaves algebraic patterns just as the loom weaves flowers.",
		Reaction: "Would annotate this card with fourteen corrective footnotes.",
		Rival:    "Anyone who calls it just a calculator.",
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	card := sampleCard()
	token := Encode(card, "ai_researcher")

	decoded, ok := Decode(token)
	if !ok {
		t.Fatalf("expected token to decode")
	}
	if decoded.Aspiration != "ai_researcher" {
		t.Fatalf("aspiration lost: %q", decoded.Aspiration)
	}
	if !reflect.DeepEqual(decoded.Card, card) {
		t.Fatalf("round trip mutated card:\n got  %+v\n want %+v", decoded.Card, card)
	}
}

func TestEncodeDecodeRoundTripNonASCII(t *testing.T) {
	card := sampleCard()
	card.Name = "박마리"
	card.Quote = "일정은 내 뒤에 있다, 내가 일정 앞에 있는 게 아니라."
	card.Archetype.Flavor = "혼돈 속에서 배포한다 🚀"

	decoded, ok := Decode(Encode(card, "cto"))
	if !ok {
		t.Fatalf("expected token to decode")
	}
	if decoded.Card.Name != card.Name || decoded.Card.Quote != card.Quote {
		t.Fatalf("non-ASCII fields mutated: %+v", decoded.Card)
	}
	if decoded.Card.Archetype.Flavor != card.Archetype.Flavor {
		t.Fatalf("flavor mutated: %q", decoded.Card.Archetype.Flavor)
	}
}

func TestEncodeEnforcesTruncationCeilings(t *testing.T) {
	long := strings.Repeat("너", 500)
	card := sampleCard()
	card.Name = long
	card.Quote = long
	card.Archetype.Name = long
	card.Archetype.Description = long
	card.Archetype.Weakness = long
	card.Roasts[0] = long
	card.Gaps[2] = long
	card.Moves[1].Name = long
	card.Moves[1].Effect = long
	card.Roadmap[0].Title = long
	card.Roadmap[0].Actions[1] = long
	card.Episodes[0].Guest = long
	card.Rival = long

	decoded, ok := Decode(Encode(card, "cto"))
	if !ok {
		t.Fatalf("expected oversized card to still encode and decode")
	}

	got := decoded.Card
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"name", got.Name, MaxName},
		{"quote", got.Quote, MaxQuote},
		{"archetype name", got.Archetype.Name, MaxArchetypeName},
		{"archetype description", got.Archetype.Description, MaxDescription},
		{"weakness", got.Archetype.Weakness, MaxWeakness},
		{"roast", got.Roasts[0], MaxRoast},
		{"gap", got.Gaps[2], MaxGap},
		{"move name", got.Moves[1].Name, MaxMoveName},
		{"move effect", got.Moves[1].Effect, MaxMoveEffect},
		{"roadmap title", got.Roadmap[0].Title, MaxRoadmapTitle},
		{"roadmap action", got.Roadmap[0].Actions[1], MaxRoadmapAction},
		{"episode guest", got.Episodes[0].Guest, MaxEpisodeField},
		{"rival", got.Rival, MaxRival},
	}
	for _, c := range checks {
		if n := utf8.RuneCountInString(c.value); n > c.max {
			t.Fatalf("%s exceeds ceiling: %d > %d", c.field, n, c.max)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tokens := []string{
		"",
		"not base64 at all!!!",
		base64.RawURLEncoding.EncodeToString([]byte("plain prose")),
		base64.RawURLEncoding.EncodeToString([]byte(`{}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"n":"x","c":[1,2]}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"n":"x","c":[1,2,3],"m":[["name","not-int",50,"fx"]]}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"n":"x","c":[1,2,3],"r":[[1]]}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"n":"x","c":[1,2,3],"v":[["only","two"]]}`)),
	}

	for _, token := range tokens {
		if decoded, ok := Decode(token); ok {
			t.Fatalf("expected decode failure for %q, got %+v", token, decoded)
		}
	}
}

func TestTokenIsURLPathSafe(t *testing.T) {
	token := Encode(sampleCard(), "unicorn_founder")
	if strings.ContainsAny(token, "+/=?&# ") {
		t.Fatalf("token contains URL-unsafe characters: %q", token)
	}
}
