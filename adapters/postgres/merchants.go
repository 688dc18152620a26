package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/dbx"
)

type MerchantRepository struct {
	db dbx.DBTX
}

func NewMerchantRepository(db dbx.DBTX) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// ListPresets returns the shared merchants with their default labels
func (r *MerchantRepository) ListPresets(ctx context.Context) ([]core.Merchant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, pfp_location, color FROM merchants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	merchants := []core.Merchant{}
	index := map[int64]int{}
	for rows.Next() {
		var m core.Merchant
		if err := rows.Scan(&m.ID, &m.Name, &m.PfpLocation, &m.Color); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.DefaultLabels = []core.Label{}
		index[m.ID] = len(merchants)
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	links, err := r.labelLinks(ctx,
		`SELECT mdl.merchant_id, l.id, l.name, l.color
		 FROM merchant_default_labels mdl
		 JOIN labels l ON l.id = mdl.label_id
		 ORDER BY mdl.merchant_id, l.id`)
	if err != nil {
		return nil, err
	}
	for merchantID, labels := range links {
		if i, ok := index[merchantID]; ok {
			merchants[i].DefaultLabels = labels
		}
	}

	return merchants, nil
}

// ListByUser returns the user's merchants joined with their underlying
// preset, if any, and their default labels
func (r *MerchantRepository) ListByUser(ctx context.Context, userID string) ([]core.UserMerchant, error) {
	query :=
		`SELECT um.id, um.user_id, um.merchant_id, um.name, um.color, um.pfp_location,
		        m.id, m.name, m.pfp_location, m.color
		 FROM user_merchants um
		 LEFT JOIN merchants m ON m.id = um.merchant_id
		 WHERE um.user_id = $1
		 ORDER BY um.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	merchants := []core.UserMerchant{}
	index := map[int64]int{}
	for rows.Next() {
		var um core.UserMerchant
		var (
			uID          *int64
			uName        *string
			uPfpLocation *string
			uColor       *string
		)
		if err := rows.Scan(&um.ID, &um.UserID, &um.MerchantID, &um.Name, &um.Color, &um.PfpLocation,
			&uID, &uName, &uPfpLocation, &uColor); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if uID != nil {
			um.Underlying = &core.Merchant{ID: *uID, PfpLocation: uPfpLocation, Color: uColor}
			if uName != nil {
				um.Underlying.Name = *uName
			}
		}
		um.DefaultLabels = []core.Label{}
		index[um.ID] = len(merchants)
		merchants = append(merchants, um)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	links, err := r.labelLinks(ctx,
		`SELECT uml.user_merchant_id, l.id, l.name, l.color
		 FROM user_merchant_default_labels uml
		 JOIN user_merchants um ON um.id = uml.user_merchant_id
		 JOIN labels l ON l.id = uml.label_id
		 WHERE um.user_id = $1
		 ORDER BY uml.user_merchant_id, l.id`, userID)
	if err != nil {
		return nil, err
	}
	for id, labels := range links {
		if i, ok := index[id]; ok {
			merchants[i].DefaultLabels = labels
		}
	}

	return merchants, nil
}

func (r *MerchantRepository) labelLinks(ctx context.Context, query string, args ...any) (map[int64][]core.Label, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	links := map[int64][]core.Label{}
	for rows.Next() {
		var owner int64
		var l core.Label
		if err := rows.Scan(&owner, &l.ID, &l.Name, &l.Color); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		links[owner] = append(links[owner], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return links, nil
}

func (r *MerchantRepository) CreateUserMerchant(ctx context.Context, m *core.UserMerchant) (int64, error) {
	query :=
		`INSERT INTO user_merchants (user_id, merchant_id, name, color, pfp_location)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query,
		m.UserID, m.MerchantID, m.Name, m.Color, m.PfpLocation).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return 0, core.NewValidationError(core.Issue{Field: "underlyingMerchantId", Message: "unknown merchant"})
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *MerchantRepository) LinkLabels(ctx context.Context, userID string, userMerchantID int64, labelIDs []int64) error {
	ids := dedupe(labelIDs)
	if len(ids) == 0 {
		return nil
	}

	args := []any{userMerchantID, userID}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", i+3)
	}

	query := `INSERT INTO user_merchant_default_labels (user_merchant_id, label_id)
		 SELECT $1, id FROM labels
		 WHERE (user_id = $2 OR user_id IS NULL) AND id IN (` + strings.Join(placeholders, ", ") + `)`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != int64(len(ids)) {
		return core.NewValidationError(core.Issue{Field: "defaultLabels", Message: "unknown label"})
	}

	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
