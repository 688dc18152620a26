package postgres

import (
	"context"
	"fmt"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/dbx"
)

type LabelRepository struct {
	db dbx.DBTX
}

func NewLabelRepository(db dbx.DBTX) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, label *core.Label) (int64, error) {
	query :=
		`INSERT INTO labels (user_id, name, color)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, label.UserID, label.Name, label.Color).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *LabelRepository) ListByUser(ctx context.Context, userID string) ([]core.Label, error) {
	query :=
		`SELECT id, user_id, name, color
		 FROM labels
		 WHERE user_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	labels := []core.Label{}
	for rows.Next() {
		var l core.Label
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Color); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return labels, nil
}
