package share

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/internal/service/database"
	"github.com/kapu/career-card-go/pkg/errors"
)

// Record is a permanently persisted card addressable by its short id.
type Record struct {
	ID         string       `json:"id"`
	Aspiration string       `json:"aspiration"`
	Card       *domain.Card `json:"card"`
}

// Repository stores shareable records in Postgres. Records never expire and
// are never deduplicated: every successful resolution mints a fresh id, even
// when the card content came from the cache.
type Repository struct {
	postgres *database.PostgresService
	logger   *zap.Logger
}

func NewRepository(postgres *database.PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		postgres: postgres,
		logger:   logger,
	}
}

// EnsureSchema creates the backing table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS shared_cards (
    id         TEXT PRIMARY KEY,
    subject    TEXT NOT NULL,
    aspiration TEXT NOT NULL,
    card       JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := r.postgres.GetDB().ExecContext(ctx, ddl); err != nil {
		return errors.NewStoreError("failed to ensure shared_cards schema", "ensure_schema", err)
	}
	return nil
}

// Create persists a new shareable record and returns its short id. One
// retry on id collision; collisions on 10 hex chars of a v4 uuid are
// effectively theoretical.
func (r *Repository) Create(ctx context.Context, card *domain.Card, aspiration string) (string, error) {
	payload, err := json.Marshal(card)
	if err != nil {
		return "", errors.NewStoreError("failed to marshal card", "create", err)
	}

	const insert = `INSERT INTO shared_cards (id, subject, aspiration, card) VALUES ($1, $2, $3, $4)`

	for attempt := 0; attempt < 2; attempt++ {
		id := newShortID()
		_, err = r.postgres.GetDB().ExecContext(ctx, insert, id, card.Name, aspiration, payload)
		if err == nil {
			r.logger.Debug("Shareable record created",
				zap.String("share_id", id),
				zap.String("subject", card.Name),
			)
			return id, nil
		}
		if !isUniqueViolation(err) {
			break
		}
		r.logger.Warn("Share id collision, retrying", zap.String("share_id", id))
	}

	return "", errors.NewStoreError("failed to create shareable record", "create", err)
}

// Get loads a record by its short id. A missing id returns (nil, nil).
func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	const query = `SELECT id, aspiration, card FROM shared_cards WHERE id = $1`

	var rec Record
	var payload []byte
	err := r.postgres.GetDB().QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Aspiration, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to load shareable record", "get", err)
	}

	var card domain.Card
	if err := json.Unmarshal(payload, &card); err != nil {
		return nil, errors.NewStoreError("stored card malformed", "get", err)
	}
	rec.Card = &card

	return &rec, nil
}

func newShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
