package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"immoapp/internal/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, listing domain.Listing) error
	GetByID(ctx context.Context, id string) (domain.ListingWithOwner, error)
	List(ctx context.Context) ([]domain.ListingWithOwner, error)
	Delete(ctx context.Context, id string) error
}

type PgListingRepository struct {
	pool *pgxpool.Pool
}

func NewPgListingRepository(pool *pgxpool.Pool) *PgListingRepository {
	return &PgListingRepository{pool: pool}
}

const listingSelect = `
	SELECT l.id, l.owner_id, l.title, l.description, l.price, l.address, l.city,
	       l.zip_code, l.surface, l.rooms, l.bedrooms, l.bathrooms, l.type, l.status,
	       l.images, l.created_at, a.name, a.email
	FROM listings l
	JOIN accounts a ON a.id = l.owner_id
`

func (r *PgListingRepository) Create(ctx context.Context, listing domain.Listing) error {
	const query = `
		INSERT INTO listings (
			id, owner_id, title, description, price, address, city, zip_code,
			surface, rooms, bedrooms, bathrooms, type, status, images, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	images := listing.Images
	if images == nil {
		images = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		listing.ID,
		listing.OwnerID,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Address,
		listing.City,
		listing.ZipCode,
		listing.Surface,
		listing.Rooms,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.Type,
		listing.Status,
		images,
		listing.CreatedAt,
	)
	return err
}

func (r *PgListingRepository) GetByID(ctx context.Context, id string) (domain.ListingWithOwner, error) {
	return scanListing(r.pool.QueryRow(ctx, listingSelect+` WHERE l.id = $1`, id))
}

func (r *PgListingRepository) List(ctx context.Context) ([]domain.ListingWithOwner, error) {
	rows, err := r.pool.Query(ctx, listingSelect+` ORDER BY l.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ListingWithOwner
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PgListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanListing(row pgx.Row) (domain.ListingWithOwner, error) {
	var l domain.ListingWithOwner
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Title,
		&l.Description,
		&l.Price,
		&l.Address,
		&l.City,
		&l.ZipCode,
		&l.Surface,
		&l.Rooms,
		&l.Bedrooms,
		&l.Bathrooms,
		&l.Type,
		&l.Status,
		&l.Images,
		&l.CreatedAt,
		&l.Owner.Name,
		&l.Owner.Email,
	)
	if err != nil {
		return domain.ListingWithOwner{}, err
	}
	return l, nil
}
