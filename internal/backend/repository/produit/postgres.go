package produit

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, nom, COALESCE(description, ''), prix, stock, COALESCE(image, ''), COALESCE(categorie_id, 0)
FROM produits
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("produit repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image, &p.CategoryID); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("produit repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("produit repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	const q = `
SELECT id, nom, COALESCE(description, ''), prix, stock, COALESCE(image, ''), COALESCE(categorie_id, 0)
FROM produits
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image, &p.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("produit repo: get id=%d not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("produit repo: get id=%d error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

// Upsert inserts the product, or updates it in place when an id is given.
// Explicit-id inserts keep the sequence ahead so seeded and imported rows
// do not collide with later inserts.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	res := p
	if p.ID > 0 {
		const q = `
INSERT INTO produits (id, nom, description, prix, stock, image, categorie_id)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0))
ON CONFLICT (id) DO UPDATE SET
    nom = EXCLUDED.nom,
    description = EXCLUDED.description,
    prix = EXCLUDED.prix,
    stock = EXCLUDED.stock,
    image = EXCLUDED.image,
    categorie_id = EXCLUDED.categorie_id
RETURNING id
`
		if err := r.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Image, p.CategoryID).Scan(&res.ID); err != nil {
			r.logger.Printf("produit repo: upsert id=%d error=%v", p.ID, err)
			return nil, err
		}
		const bump = `SELECT setval('produits_id_seq', GREATEST((SELECT MAX(id) FROM produits), 1))`
		if _, err := r.pool.Exec(ctx, bump); err != nil {
			r.logger.Printf("produit repo: bump sequence error=%v", err)
		}
		return &res, nil
	}

	const q = `
INSERT INTO produits (nom, description, prix, stock, image, categorie_id)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0))
RETURNING id
`
	if err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Price, p.Stock, p.Image, p.CategoryID).Scan(&res.ID); err != nil {
		r.logger.Printf("produit repo: insert nom=%s error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("produit repo: inserted id=%d nom=%s", res.ID, res.Name)
	return &res, nil
}
