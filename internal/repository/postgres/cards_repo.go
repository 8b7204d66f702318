package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gshelgaas/bankcards/internal/models"
	"github.com/gshelgaas/bankcards/internal/repository"
)

type cardsRepo struct{ db querier }

const cardColumns = `id, number_enc, number_hash, card_holder, expiry_date, status, balance, user_id, created_at`

func scanCard(row pgx.Row) (models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.NumberEnc, &c.NumberHash, &c.Holder, &c.ExpiryDate,
		&c.Status, &c.Balance, &c.UserID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Card{}, repository.ErrNotFound
	}
	return c, err
}

func (r *cardsRepo) Create(ctx context.Context, c models.Card) (models.Card, error) {
	return scanCard(r.db.QueryRow(ctx,
		`INSERT INTO cards(id, number_enc, number_hash, card_holder, expiry_date, status, balance, user_id, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING `+cardColumns,
		c.ID, c.NumberEnc, c.NumberHash, c.Holder, c.ExpiryDate, c.Status, c.Balance, c.UserID, c.CreatedAt,
	))
}

func (r *cardsRepo) GetByID(ctx context.Context, id string) (models.Card, error) {
	return scanCard(r.db.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id=$1`, id))
}

func (r *cardsRepo) GetForUpdate(ctx context.Context, id string) (models.Card, error) {
	return scanCard(r.db.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id=$1 FOR UPDATE`, id))
}

func (r *cardsRepo) ExistsByNumberHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM cards WHERE number_hash=$1)`, hash).Scan(&exists)
	return exists, err
}

func (r *cardsRepo) List(ctx context.Context, f repository.CardFilter) ([]models.Card, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cardColumns+`
		   FROM cards
		  WHERE ($1 = '' OR user_id = $1)
		    AND ($2 = '' OR status = $2)
		  ORDER BY created_at DESC
		  LIMIT $3 OFFSET $4`,
		f.UserID, string(f.Status), f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cardsRepo) UpdateStatus(ctx context.Context, id string, status models.CardStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE cards SET status=$2 WHERE id=$1`, id, status)
	if err == nil && tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return err
}

func (r *cardsRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE cards SET balance=$2 WHERE id=$1`, id, balance)
	if err == nil && tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return err
}

func (r *cardsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cards WHERE id=$1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return err
}
