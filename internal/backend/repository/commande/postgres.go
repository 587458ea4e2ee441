package commande

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-engine/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create inserts the order and its line references in one transaction.
func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO commandes (date_commande, statut, adherent_id, montant_total)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	res := o
	if err := tx.QueryRow(ctx, q, o.OrderDate, o.Status, o.CustomerID, o.TotalAmount).Scan(&res.ID); err != nil {
		r.logger.Printf("commande repo: create adherent_id=%d error=%v", o.CustomerID, err)
		return nil, err
	}

	const lineQ = `
INSERT INTO commande_produits (commande_id, position, produit_id)
VALUES ($1, $2, $3)
`
	for pos, produitID := range o.LineItemIDs {
		if _, err := tx.Exec(ctx, lineQ, res.ID, pos, produitID); err != nil {
			r.logger.Printf("commande repo: create line commande_id=%d produit_id=%d error=%v", res.ID, produitID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("commande repo: created id=%d adherent_id=%d lines=%d", res.ID, res.CustomerID, len(res.LineItemIDs))
	return &res, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int) (*domain.Order, error) {
	const q = `
SELECT id, date_commande, statut, adherent_id, COALESCE(montant_total, 0)
FROM commandes
WHERE id = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.OrderDate, &o.Status, &o.CustomerID, &o.TotalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("commande repo: get id=%d error=%v", id, err)
		return nil, err
	}
	if o.LineItemIDs, err = r.lineIDs(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT id, date_commande, statut, adherent_id, COALESCE(montant_total, 0)
FROM commandes
ORDER BY date_commande DESC
`
	return r.list(ctx, q)
}

func (r *postgresRepo) ListByAdherent(ctx context.Context, adherentID int) ([]domain.Order, error) {
	const q = `
SELECT id, date_commande, statut, adherent_id, COALESCE(montant_total, 0)
FROM commandes
WHERE adherent_id = $1
ORDER BY date_commande DESC
`
	return r.list(ctx, q, adherentID)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("commande repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.OrderDate, &o.Status, &o.CustomerID, &o.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if result[i].LineItemIDs, err = r.lineIDs(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) lineIDs(ctx context.Context, commandeID int) ([]int, error) {
	const q = `
SELECT produit_id
FROM commande_produits
WHERE commande_id = $1
ORDER BY position
`
	rows, err := r.pool.Query(ctx, q, commandeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
