package postgres

import (
	"context"

	"github.com/gshelgaas/bankcards/internal/models"
)

type transfersRepo struct{ db querier }

func (r *transfersRepo) Create(ctx context.Context, t models.Transfer) (models.Transfer, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO transfers(id, from_card_id, to_card_id, amount, status, description, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id, created_at`,
		t.ID, t.FromCardID, t.ToCardID, t.Amount, t.Status, t.Description, t.CreatedAt,
	).Scan(&t.ID, &t.CreatedAt)
	return t, err
}

func (r *transfersRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transfer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.from_card_id, t.to_card_id, t.amount, t.status, t.description, t.created_at
		   FROM transfers t
		   JOIN cards f ON f.id = t.from_card_id
		   JOIN cards d ON d.id = t.to_card_id
		  WHERE f.user_id = $1 OR d.user_id = $1
		  ORDER BY t.created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.FromCardID, &t.ToCardID, &t.Amount, &t.Status, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transfersRepo) DeleteByCard(ctx context.Context, cardID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM transfers WHERE from_card_id=$1 OR to_card_id=$1`, cardID)
	return err
}
