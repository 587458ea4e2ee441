// Package seed loads sample catalog and directory rows for manual testing.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type produitSeed struct {
	Nom         string
	Description string
	Prix        float64
	Stock       int
	Image       string
}

// Apply inserts basic seed data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	produits := []produitSeed{
		{
			Nom:         "T-shirt coton bio",
			Description: "Organic cotton tee, unisex fit",
			Prix:        19.99,
			Stock:       120,
			Image:       "/assets/products/tshirt.jpg",
		},
		{
			Nom:         "Mug émaillé",
			Description: "Enamel mug, 350ml",
			Prix:        12.50,
			Stock:       80,
			Image:       "/assets/products/mug.jpg",
		},
		{
			Nom:         "Sac à dos urbain",
			Description: "Water-resistant 20L backpack",
			Prix:        59.90,
			Stock:       35,
			Image:       "/assets/products/backpack.jpg",
		},
		{
			Nom:         "Casque audio sans fil",
			Description: "Bluetooth over-ear headphones, 30h battery",
			Prix:        129.00,
			Stock:       18,
			Image:       "/assets/products/headphones.jpg",
		},
	}

	for _, p := range produits {
		if err := upsertProduit(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert produit %s: %w", p.Nom, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO adherents (nom, prenom, email, mot_de_passe, role)
VALUES ('Admin', 'Demo', 'admin@example.com', 'default-password', 'ADMIN')
ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
`
	_, err := pool.Exec(ctx, q)
	return err
}

func upsertProduit(ctx context.Context, pool *pgxpool.Pool, p produitSeed) error {
	// nom is not unique in the schema, so emulate an upsert keyed on nom.
	const q = `
INSERT INTO produits (nom, description, prix, stock, image)
SELECT $1, $2, $3, $4, $5
WHERE NOT EXISTS (SELECT 1 FROM produits WHERE nom = $1)
`
	_, err := pool.Exec(ctx, q, p.Nom, p.Description, p.Prix, p.Stock, p.Image)
	if err != nil {
		return err
	}
	const upd = `
UPDATE produits
SET description = $2, prix = $3, stock = $4, image = $5
WHERE nom = $1
`
	_, err = pool.Exec(ctx, upd, p.Nom, p.Description, p.Prix, p.Stock, p.Image)
	return err
}
