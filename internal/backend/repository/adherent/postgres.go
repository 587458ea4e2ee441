package adherent

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *postgresRepo) Create(ctx context.Context, u domain.UserRecord) (*domain.UserRecord, error) {
	const q = `
INSERT INTO adherents (nom, prenom, email, mot_de_passe, role)
VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'USER'))
RETURNING id, role
`
	res := u
	err := r.pool.QueryRow(ctx, q, u.LastName, u.FirstName, strings.ToLower(u.Email), u.Password, u.Role).
		Scan(&res.ID, &res.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Printf("adherent repo: create email=%s already exists", u.Email)
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("adherent repo: create email=%s error=%v", u.Email, err)
		return nil, err
	}
	r.logger.Printf("adherent repo: created id=%d email=%s", res.ID, res.Email)
	return &res, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	const q = `
SELECT id, nom, prenom, email, mot_de_passe, role
FROM adherents
WHERE email = $1
`
	return r.scanOne(ctx, q, strings.ToLower(email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int) (*domain.UserRecord, error) {
	const q = `
SELECT id, nom, prenom, email, mot_de_passe, role
FROM adherents
WHERE id = $1
`
	return r.scanOne(ctx, q, id)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.UserRecord, error) {
	const q = `
SELECT id, nom, prenom, email, mot_de_passe, role
FROM adherents
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("adherent repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserRecord
	for rows.Next() {
		var u domain.UserRecord
		if err := rows.Scan(&u.ID, &u.LastName, &u.FirstName, &u.Email, &u.Password, &u.Role); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("adherent repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scanOne(ctx context.Context, q string, arg any) (*domain.UserRecord, error) {
	var u domain.UserRecord
	err := r.pool.QueryRow(ctx, q, arg).Scan(&u.ID, &u.LastName, &u.FirstName, &u.Email, &u.Password, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("adherent repo: get error=%v", err)
		return nil, err
	}
	return &u, nil
}
