package corpus

import (
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/domain"
)

func testCorpus() *Corpus {
	return New([]*Entry{
		{Card: domain.Card{Name: "Elon Musk", Score: 94}},
		{Card: domain.Card{Name: "Grace Hopper", Score: 97}},
		{Card: domain.Card{Name: "Linus Torvalds", Score: 96}},
	})
}

func TestLoadEmbeddedCorpus(t *testing.T) {
	c, err := Load(zap.NewNop())
	if err != nil {
		t.Fatalf("embedded corpus failed to load: %v", err)
	}
	if len(c.Entries()) == 0 {
		t.Fatalf("embedded corpus is empty")
	}

	for _, e := range c.Entries() {
		card := e.Card
		if card.Name == "" {
			t.Fatalf("corpus entry without a name: %+v", e)
		}
		if len(card.Roasts) != domain.RoastCount {
			t.Fatalf("%s: expected %d roasts, got %d", card.Name, domain.RoastCount, len(card.Roasts))
		}
		if len(card.Moves) != domain.MoveCount {
			t.Fatalf("%s: expected %d moves, got %d", card.Name, domain.MoveCount, len(card.Moves))
		}
		if len(card.Roadmap) != domain.RoadmapPhaseCount {
			t.Fatalf("%s: expected %d roadmap phases, got %d", card.Name, domain.RoadmapPhaseCount, len(card.Roadmap))
		}
		if card.Score < domain.MinScore || card.Score > domain.MaxScore {
			t.Fatalf("%s: score out of range: %d", card.Name, card.Score)
		}
	}
}

func TestExactMatchIsCaseAndSpacingInsensitive(t *testing.T) {
	c := testCorpus()

	for _, query := range []string{"Grace Hopper", "grace hopper", "  GRACE   HOPPER  "} {
		entry := c.Exact(query)
		if entry == nil || entry.Card.Name != "Grace Hopper" {
			t.Fatalf("Exact(%q) did not resolve Grace Hopper: %+v", query, entry)
		}
	}

	if entry := c.Exact("Gracie Hopper"); entry != nil {
		t.Fatalf("Exact should not fuzzy-match, got %+v", entry)
	}
}

func TestFuzzyPrefixQueryResolves(t *testing.T) {
	c := testCorpus()

	candidates := c.Fuzzy("grace")
	if len(candidates) == 0 {
		t.Fatalf("expected fuzzy candidates for prefix query")
	}
	if !Acceptable("grace", candidates[0]) {
		t.Fatalf("prefix query should be acceptable, candidate %q", candidates[0].Card.Name)
	}
	if candidates[0].Card.Name != "Grace Hopper" {
		t.Fatalf("wrong top candidate: %q", candidates[0].Card.Name)
	}
}

func TestFuzzyQueryStartingWithFirstNameTokenResolves(t *testing.T) {
	c := testCorpus()

	candidates := c.Fuzzy("elon musk the third")
	if len(candidates) == 0 {
		t.Fatalf("expected fuzzy candidates")
	}
	if !Acceptable("elon musk the third", candidates[0]) {
		t.Fatalf("query starting with candidate's first token should be acceptable")
	}
}

func TestFuzzyNonPrefixMatchIsRejected(t *testing.T) {
	c := testCorpus()

	// "musk" is contained in "elon musk" but is neither a prefix of the
	// name nor does it start with "elon", so it must not resolve.
	for _, candidate := range c.Fuzzy("musk") {
		if Acceptable("musk", candidate) {
			t.Fatalf("suffix query must not be acceptable, candidate %q", candidate.Card.Name)
		}
	}

	for _, candidate := range c.Fuzzy("hopper") {
		if Acceptable("hopper", candidate) {
			t.Fatalf("last-name query must not be acceptable, candidate %q", candidate.Card.Name)
		}
	}
}

func TestUnrelatedQueryHasNoAcceptableCandidate(t *testing.T) {
	c := testCorpus()

	for _, candidate := range c.Fuzzy("random developer") {
		if Acceptable("random developer", candidate) {
			t.Fatalf("unrelated query resolved to %q", candidate.Card.Name)
		}
	}
}
