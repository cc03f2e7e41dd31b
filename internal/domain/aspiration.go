package domain

// Aspiration is one of the fixed target roles a subject is evaluated against.
type Aspiration string

const (
	AspirationFAANGEngineer      Aspiration = "faang_engineer"
	AspirationUnicornFounder     Aspiration = "unicorn_founder"
	AspirationAIResearcher       Aspiration = "ai_researcher"
	AspirationStaffEngineer      Aspiration = "staff_engineer"
	AspirationEngineeringManager Aspiration = "engineering_manager"
	AspirationProductVisionary   Aspiration = "product_visionary"
	AspirationDevRelStar         Aspiration = "devrel_star"
	AspirationCTO                Aspiration = "cto"
)

// AspirationInfo carries the display label and the one-line description that
// is embedded into generation prompts.
type AspirationInfo struct {
	Key         Aspiration `json:"key"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
}

var aspirationTable = map[Aspiration]AspirationInfo{
	AspirationFAANGEngineer: {
		Key:         AspirationFAANGEngineer,
		Label:       "Big Tech Engineer",
		Description: "A software engineer at a top-tier tech giant, surviving six rounds of interviews and twelve layers of process.",
	},
	AspirationUnicornFounder: {
		Key:         AspirationUnicornFounder,
		Label:       "Unicorn Founder",
		Description: "A startup founder whose company is worth a billion dollars, at least on the pitch deck.",
	},
	AspirationAIResearcher: {
		Key:         AspirationAIResearcher,
		Label:       "AI Researcher",
		Description: "A researcher publishing at top venues while GPUs melt in the background.",
	},
	AspirationStaffEngineer: {
		Key:         AspirationStaffEngineer,
		Label:       "Staff Engineer",
		Description: "The engineer other engineers quietly ask before touching the legacy system.",
	},
	AspirationEngineeringManager: {
		Key:         AspirationEngineeringManager,
		Label:       "Engineering Manager",
		Description: "A manager who ships roadmaps, feedback cycles, and the occasional hotfix of team morale.",
	},
	AspirationProductVisionary: {
		Key:         AspirationProductVisionary,
		Label:       "Product Visionary",
		Description: "A product leader who can describe the same feature five different ways to five different stakeholders.",
	},
	AspirationDevRelStar: {
		Key:         AspirationDevRelStar,
		Label:       "DevRel Star",
		Description: "A developer advocate whose conference talks get more views than the product's landing page.",
	},
	AspirationCTO: {
		Key:         AspirationCTO,
		Label:       "CTO",
		Description: "The executive who is technically responsible for everything and practically blamed for most of it.",
	},
}

// aspirationOrder fixes the listing order for the public API.
var aspirationOrder = []Aspiration{
	AspirationFAANGEngineer,
	AspirationUnicornFounder,
	AspirationAIResearcher,
	AspirationStaffEngineer,
	AspirationEngineeringManager,
	AspirationProductVisionary,
	AspirationDevRelStar,
	AspirationCTO,
}

// LookupAspiration resolves an aspiration key, reporting whether it is a
// member of the fixed set.
func LookupAspiration(key string) (AspirationInfo, bool) {
	info, ok := aspirationTable[Aspiration(key)]
	return info, ok
}

// AllAspirations returns the fixed aspiration set in stable order.
func AllAspirations() []AspirationInfo {
	out := make([]AspirationInfo, 0, len(aspirationOrder))
	for _, key := range aspirationOrder {
		out = append(out, aspirationTable[key])
	}
	return out
}
