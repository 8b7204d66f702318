package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gshelgaas/bankcards/internal/models"
	"github.com/gshelgaas/bankcards/internal/repository"
)

type blockRequestsRepo struct{ db querier }

func (r *blockRequestsRepo) Create(ctx context.Context, br models.BlockRequest) (models.BlockRequest, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO block_requests(id, card_id, reason, status, requested_at, processed_at)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, requested_at`,
		br.ID, br.CardID, br.Reason, br.Status, br.RequestedAt, br.ProcessedAt,
	).Scan(&br.ID, &br.RequestedAt)
	return br, err
}

func (r *blockRequestsRepo) GetPendingByCard(ctx context.Context, cardID string) (models.BlockRequest, error) {
	var br models.BlockRequest
	err := r.db.QueryRow(ctx,
		`SELECT id, card_id, reason, status, requested_at, processed_at
		   FROM block_requests
		  WHERE card_id=$1 AND status=$2`,
		cardID, models.BlockPending,
	).Scan(&br.ID, &br.CardID, &br.Reason, &br.Status, &br.RequestedAt, &br.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.BlockRequest{}, repository.ErrNotFound
	}
	return br, err
}

func (r *blockRequestsRepo) Update(ctx context.Context, br models.BlockRequest) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE block_requests SET status=$2, processed_at=$3 WHERE id=$1`,
		br.ID, br.Status, br.ProcessedAt)
	if err == nil && tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return err
}

func (r *blockRequestsRepo) DeleteByCard(ctx context.Context, cardID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM block_requests WHERE card_id=$1`, cardID)
	return err
}
