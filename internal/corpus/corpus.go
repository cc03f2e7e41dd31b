package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/util"
)

//go:embed corpus.json
var corpusData []byte

// Entry is an immutable pre-authored card. Entries are loaded once at
// process start and never mutated.
type Entry struct {
	Card domain.Card `json:"card"`
}

// Corpus is the static read-only lookup table. It is constructed once and
// injected by reference so tests can substitute their own table.
type Corpus struct {
	entries []*Entry
	byKey   map[string]*Entry
}

// Load parses the embedded corpus. A malformed embedded file is a build
// defect, so it fails hard.
func Load(logger *zap.Logger) (*Corpus, error) {
	var entries []*Entry
	if err := json.Unmarshal(corpusData, &entries); err != nil {
		return nil, fmt.Errorf("parse embedded corpus: %w", err)
	}

	c := &Corpus{
		entries: entries,
		byKey:   make(map[string]*Entry, len(entries)),
	}
	for _, e := range entries {
		c.byKey[util.CacheKey(e.Card.Name)] = e
	}

	if logger != nil {
		logger.Info("Static corpus loaded", zap.Int("entries", len(entries)))
	}
	return c, nil
}

// New builds a corpus from explicit entries (test seam).
func New(entries []*Entry) *Corpus {
	c := &Corpus{
		entries: entries,
		byKey:   make(map[string]*Entry, len(entries)),
	}
	for _, e := range entries {
		c.byKey[util.CacheKey(e.Card.Name)] = e
	}
	return c
}

// Entries returns every corpus entry.
func (c *Corpus) Entries() []*Entry {
	return c.entries
}

// Exact returns the entry whose normalized name matches the query exactly.
func (c *Corpus) Exact(name string) *Entry {
	return c.byKey[util.CacheKey(name)]
}

// Fuzzy returns candidate entries ranked by substring/token similarity.
// Callers must gate the result through Acceptable before using it.
func (c *Corpus) Fuzzy(query string) []*Entry {
	queryNorm := util.Normalize(query)
	if queryNorm == "" {
		return nil
	}

	type scored struct {
		entry *Entry
		score int
	}
	var candidates []scored

	for _, e := range c.entries {
		nameNorm := util.Normalize(e.Card.Name)
		score := similarity(queryNorm, nameNorm)
		if score > 0 {
			candidates = append(candidates, scored{entry: e, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]*Entry, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.entry
	}
	return out
}

// Acceptable is the conservative acceptance rule for fuzzy results: accept
// only if the candidate's name starts with the query, or the query starts
// with the candidate's first name token. The asymmetry avoids celebrity
// collisions on short or partial input while allowing natural partial-name
// queries.
func Acceptable(query string, candidate *Entry) bool {
	if candidate == nil {
		return false
	}
	queryNorm := util.Normalize(query)
	nameNorm := util.Normalize(candidate.Card.Name)
	if queryNorm == "" || nameNorm == "" {
		return false
	}

	if strings.HasPrefix(nameNorm, queryNorm) {
		return true
	}

	firstToken := util.FirstToken(nameNorm)
	return firstToken != "" && strings.HasPrefix(queryNorm, firstToken)
}

// similarity scores substring containment plus shared tokens. Higher is a
// closer match; zero means unrelated.
func similarity(queryNorm, nameNorm string) int {
	score := 0
	if strings.Contains(nameNorm, queryNorm) {
		score += 100 - (len(nameNorm) - len(queryNorm))
	} else if strings.Contains(queryNorm, nameNorm) {
		score += 80
	}

	nameTokens := strings.Fields(nameNorm)
	for _, qt := range strings.Fields(queryNorm) {
		for _, nt := range nameTokens {
			if qt == nt {
				score += 25
			} else if strings.HasPrefix(nt, qt) {
				score += 10
			}
		}
	}
	return score
}
