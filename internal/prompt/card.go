package prompt

import (
	"fmt"
	"strings"
)

// CardPromptVars holds variables for the card generation prompt template
type CardPromptVars struct {
	Subject               string
	AspirationLabel       string
	AspirationDescription string
	Bio                   string
}

// BuildCardPrompt builds the scored career card generation prompt
func BuildCardPrompt(vars CardPromptVars) string {
	bioBlock := "(none provided)"
	if strings.TrimSpace(vars.Bio) != "" {
		bioBlock = vars.Bio
	}

	return fmt.Sprintf(`You are a comedy writer producing a collectible trading card that rates a real person's chances of making it as a "%s".
Be funny and a little mean, never cruel. Roast the gap between who they are and who they want to be.

## Scoring Rubric (overall score, 0-99):
- 90-99: already IS this role in all but title. The card is basically a coronation.
- 70-89: genuinely plausible within a year or two. Roast the remaining gap.
- 40-69: possible but the roadmap does heavy lifting. Comedy comes from the distance.
- 10-39: the dream and the evidence live on different continents. Be affectionately brutal.
- 0-9: reserved for cosmic mismatches. Maximum comedy, zero malice.
Sub-scores (technical, execution, influence) use the same 0-99 scale and should not all be equal.

## Target Role:
%s: %s

## Subject:
"%s"

## Biographical context (may be empty, use when present, never invent credentials from it):
%s

## Response Format (JSON ONLY, exactly this shape):
{
  "roasts": ["4 one-line roasts, each a single sentence under 120 chars"],
  "archetype": {
    "name": "2-4 word trading-card archetype name",
    "description": "one sentence, under 95 chars",
    "emoji": "single emoji",
    "element": "data|chaos|strategy|shipping|politics|vision",
    "flavor": "collectible-card flavor text, under 90 chars",
    "stage": "career stage label, under 20 chars",
    "weakness": "one-or-two word weakness, under 20 chars"
  },
  "moves": [
    {"name": "attack name under 24 chars", "energy": 1-4, "damage": 40-150, "effect": "one sentence under 90 chars"}
  ],
  "score": 0-99,
  "stats": {"technical": 0-99, "execution": 0-99, "influence": 0-99},
  "gaps": ["3 concrete growth gaps, each under 60 chars"],
  "roadmap": [
    {"month": 1, "title": "phase title under 40 chars", "actions": ["2 concrete actions, each under 60 chars"]}
  ],
  "episodes": [
    {"title": "podcast episode title", "guest": "guest name", "reason": "why it helps, one sentence"}
  ],
  "quote": "a fake motivational quote attributed to the subject, under 140 chars",
  "reaction": "one sentence on how the subject would react to this card, under 140 chars",
  "rival": "who their natural rival is, one sentence under 80 chars"
}

**Rules**:
- Exactly 4 roasts, 3 moves, 3 gaps, 4 roadmap phases (months 1, 3, 6, 12), 2 actions per phase, 1-3 episodes.
- Moves are named like trading-card attacks but describe real career behavior.
- The score must honestly follow the rubric. A famous expert in the target role scores 90+, a random beginner does not.
- Stay in the taxonomy for "element". No markdown, no commentary, JSON only.`,
		vars.AspirationLabel,
		vars.AspirationLabel,
		vars.AspirationDescription,
		vars.Subject,
		bioBlock,
	)
}
