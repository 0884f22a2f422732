package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

// OperandRecord is a stored operand tree for one element property.
type OperandRecord struct {
	ID        types.OperandID `db:"operand_id"`
	Element   string          `db:"element"`
	Property  types.Property  `db:"property"`
	Tree      string          `db:"tree"`
	Tags      string          `db:"tags"`
	Cost      int             `db:"cost"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Operand decodes the stored tree.
func (r *OperandRecord) Operand() (types.Operand, error) {
	return types.DecodeOperand([]byte(r.Tree))
}

// TagList splits the stored tag column.
func (r *OperandRecord) TagList() []types.Tag {
	if r.Tags == "" {
		return nil
	}
	parts := strings.Split(r.Tags, ",")
	tags := make([]types.Tag, len(parts))
	for i, p := range parts {
		tags[i] = types.Tag(p)
	}
	return tags
}

// EvaluationRecord is one row of the evaluation log.
type EvaluationRecord struct {
	ID          types.EvaluationID `db:"evaluation_id"`
	OperandID   sql.NullString     `db:"operand_id"`
	Element     string             `db:"element"`
	Property    types.Property     `db:"property"`
	ClientID    string             `db:"client_id"`
	OK          bool               `db:"ok"`
	ErrorCount  int                `db:"error_count"`
	Result      string             `db:"result"`
	DurationUs  int64              `db:"duration_us"`
	EvaluatedAt time.Time          `db:"evaluated_at"`
}

// APIKey is a newly issued key's stored metadata. The key itself is never stored.
type APIKey struct {
	ID        string
	ClientID  string
	SecretID  string
	CreatedAt time.Time
}

// Store persists operand trees, the evaluation log and API keys.
type Store struct {
	db      *sqlx.DB
	queries *Queries
}

// NewStore loads the named queries for db.
func NewStore(db *sqlx.DB) (*Store, error) {
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, queries: q}, nil
}

// Queries exposes the named queries, e.g. for the authenticator.
func (s *Store) Queries() *Queries {
	return s.queries
}

// PutOperand stores tree for element/property, replacing any previous tree.
// The operand ID of an existing row is kept.
func (s *Store) PutOperand(ctx context.Context, element string, property types.Property, tree types.Operand, tags []types.Tag, cost int) (*OperandRecord, error) {
	if element == "" {
		return nil, fmt.Errorf("%w: element name is empty", types.ErrInvalidParameter)
	}
	if _, err := types.ParseProperty(string(property)); err != nil {
		return nil, err
	}
	data, err := types.MarshalOperand(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode operand: %w", err)
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}

	now := time.Now().UTC()
	_, err = s.queries.Exec(ctx, "upsert-operand",
		types.NewOperandID(), element, property, string(data), strings.Join(names, ","), cost, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to store operand %s/%s: %w", element, property, err)
	}
	return s.GetOperand(ctx, element, property)
}

// GetOperand returns the tree stored for element/property.
func (s *Store) GetOperand(ctx context.Context, element string, property types.Property) (*OperandRecord, error) {
	var rec OperandRecord
	err := s.queries.Get(ctx, "get-operand", &rec, element, property)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrOperandNotFound, element, property)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load operand %s/%s: %w", element, property, err)
	}
	return &rec, nil
}

// GetOperandByID returns the tree with the given ID.
func (s *Store) GetOperandByID(ctx context.Context, id types.OperandID) (*OperandRecord, error) {
	var rec OperandRecord
	err := s.queries.Get(ctx, "get-operand-by-id", &rec, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", types.ErrOperandNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load operand %s: %w", id, err)
	}
	return &rec, nil
}

// ListOperands returns stored trees ordered by element and property.
// An empty element lists every element.
func (s *Store) ListOperands(ctx context.Context, element string) ([]OperandRecord, error) {
	var recs []OperandRecord
	var err error
	if element == "" {
		err = s.queries.Select(ctx, "list-operands", &recs)
	} else {
		err = s.queries.Select(ctx, "list-operands-by-element", &recs, element)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list operands: %w", err)
	}
	return recs, nil
}

// DeleteOperand removes the tree for element/property.
func (s *Store) DeleteOperand(ctx context.Context, element string, property types.Property) error {
	res, err := s.queries.Exec(ctx, "delete-operand", element, property)
	if err != nil {
		return fmt.Errorf("failed to delete operand %s/%s: %w", element, property, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", types.ErrOperandNotFound, element, property)
	}
	return nil
}

// RecordEvaluation appends result to the evaluation log.
// operandID may be empty for trees submitted inline.
func (s *Store) RecordEvaluation(ctx context.Context, operandID types.OperandID, element string, property types.Property, clientID string, result types.Either, duration time.Duration) (types.EvaluationID, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	var opID any
	if operandID != "" {
		opID = string(operandID)
	}

	id := types.NewEvaluationID()
	_, err = s.queries.Exec(ctx, "insert-evaluation",
		id, opID, element, property, clientID, result.IsRight(), len(result.Errors()),
		string(data), duration.Microseconds(), types.EvaluationIDTime(id).UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record evaluation: %w", err)
	}
	return id, nil
}

// ListEvaluations returns the newest evaluations of a stored tree.
func (s *Store) ListEvaluations(ctx context.Context, operandID types.OperandID, limit int) ([]EvaluationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []EvaluationRecord
	if err := s.queries.Select(ctx, "list-evaluations-by-operand", &recs, operandID, limit); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return recs, nil
}

// InsertAPIKey stores the HMAC of a newly issued key for clientID.
func (s *Store) InsertAPIKey(ctx context.Context, clientID, secretID string, keyHash []byte) (*APIKey, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client ID is empty", types.ErrInvalidParameter)
	}
	key := &APIKey{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ClientID:  clientID,
		SecretID:  secretID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.queries.Exec(ctx, "insert-api-key", key.ID, key.ClientID, key.SecretID, keyHash, key.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to store API key: %w", err)
	}
	return key, nil
}

// RevokeAPIKey marks a key revoked. Revoking twice is an error.
func (s *Store) RevokeAPIKey(ctx context.Context, apiKeyID string) error {
	res, err := s.queries.Exec(ctx, "revoke-api-key", time.Now().UTC(), apiKeyID)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("API key %s not found or already revoked", apiKeyID)
	}
	return nil
}
