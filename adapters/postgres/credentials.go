package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/dbx"
)

type CredentialRepository struct {
	db dbx.DBTX
}

func NewCredentialRepository(db dbx.DBTX) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(ctx context.Context, cred *core.Credential) error {
	var transports any
	if cred.Transports != nil {
		raw, err := json.Marshal(cred.Transports)
		if err != nil {
			return fmt.Errorf("encode transports: %w", err)
		}
		transports = string(raw)
	}

	query :=
		`INSERT INTO webauthn_credentials (id, user_id, public_key, counter, transports)
		 VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		cred.ID, cred.UserID, cred.PublicKey, cred.Counter, transports); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *CredentialRepository) ListByUser(ctx context.Context, userID string) ([]core.Credential, error) {
	query :=
		`SELECT id, user_id, public_key, counter, transports, created_at
		 FROM webauthn_credentials
		 WHERE user_id = $1
		 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var creds []core.Credential
	for rows.Next() {
		var c core.Credential
		var transports []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.PublicKey, &c.Counter, &transports, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if len(transports) > 0 {
			if err := json.Unmarshal(transports, &c.Transports); err != nil {
				return nil, fmt.Errorf("decode transports: %w", err)
			}
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return creds, nil
}
