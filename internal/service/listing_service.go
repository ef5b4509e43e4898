package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"immoapp/internal/domain"
	"immoapp/internal/repository"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingService gestiona los anuncios inmobiliarios.
type ListingService struct {
	logger   *zap.Logger
	listings repository.ListingRepository
	now      func() time.Time
}

func NewListingService(logger *zap.Logger, listings repository.ListingRepository) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		logger:   logger,
		listings: listings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateListingInput struct {
	Title       string   `validate:"required"`
	Description string
	Price       int64    `validate:"gt=0"`
	Address     string   `validate:"required"`
	City        string   `validate:"required"`
	ZipCode     string   `validate:"required"`
	Surface     float64  `validate:"gt=0"`
	Rooms       int      `validate:"gte=0"`
	Bedrooms    int      `validate:"gte=0"`
	Bathrooms   int      `validate:"gte=0"`
	Type        string   `validate:"required"`
	Status      string   `validate:"required"`
	Images      []string `validate:"dive,url"`
}

func (s *ListingService) Create(ctx context.Context, ownerID string, input CreateListingInput) (domain.Listing, error) {
	if strings.TrimSpace(ownerID) == "" {
		return domain.Listing{}, ErrAccountNotFound
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Address = strings.TrimSpace(input.Address)
	input.City = strings.TrimSpace(input.City)
	input.ZipCode = strings.TrimSpace(input.ZipCode)
	input.Type = strings.TrimSpace(input.Type)
	input.Status = strings.TrimSpace(input.Status)
	if err := validateStruct(input); err != nil {
		return domain.Listing{}, err
	}

	listing := domain.Listing{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Address:     input.Address,
		City:        input.City,
		ZipCode:     input.ZipCode,
		Surface:     input.Surface,
		Rooms:       input.Rooms,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Type:        input.Type,
		Status:      input.Status,
		Images:      input.Images,
		CreatedAt:   s.now(),
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return domain.Listing{}, storageFailure(err)
	}
	return listing, nil
}

func (s *ListingService) List(ctx context.Context) ([]domain.ListingWithOwner, error) {
	out, err := s.listings.List(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	if out == nil {
		out = []domain.ListingWithOwner{}
	}
	return out, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.ListingWithOwner, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ListingWithOwner{}, ErrListingNotFound
		}
		return domain.ListingWithOwner{}, storageFailure(err)
	}
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, id string) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListingNotFound
		}
		return storageFailure(err)
	}
	s.logger.Info("listing deleted", zap.String("listing_id", id))
	return nil
}
