package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"immoapp/internal/domain"
	"immoapp/internal/repository"
	"immoapp/internal/service"
)

// plainHasher evita el coste de bcrypt en tests de handlers.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (plainHasher) Compare(plaintext, digest string) bool {
	return strings.TrimPrefix(digest, "hashed:") == plaintext && strings.HasPrefix(digest, "hashed:")
}

type flakyRefreshStore struct {
	service.RefreshTokenStore
	revokeErr error
}

func (s *flakyRefreshStore) Revoke(jti string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	return s.RefreshTokenStore.Revoke(jti)
}

type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[string]domain.Account)}
}

func (r *memoryAccountRepo) Create(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memoryAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (r *memoryAccountRepo) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (r *memoryAccountRepo) SetVerificationToken(_ context.Context, id, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.EmailVerifiedAt != nil {
		return pgx.ErrNoRows
	}
	a.VerificationToken = &token
	a.VerificationTokenExpiresAt = &expiresAt
	r.accounts[id] = a
	return nil
}

func (r *memoryAccountRepo) ConsumeVerificationToken(_ context.Context, token string, now time.Time) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if a.VerificationToken != nil && *a.VerificationToken == token && a.VerificationTokenExpiresAt.After(now) {
			a.EmailVerifiedAt = &now
			a.VerificationToken = nil
			a.VerificationTokenExpiresAt = nil
			r.accounts[id] = a
			return a, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (r *memoryAccountRepo) UpdateProfile(_ context.Context, id, name, image string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Name = name
	a.Image = image
	r.accounts[id] = a
	return nil
}

func (r *memoryAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

type recordingSender struct {
	mu        sync.Mutex
	lastToken string
	err       error
}

func (s *recordingSender) SendVerificationEmail(_ context.Context, _ string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lastToken = token
	return nil
}

func (s *recordingSender) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken
}

type memoryListingRepo struct {
	mu       sync.Mutex
	listings []domain.ListingWithOwner
}

func (r *memoryListingRepo) Create(_ context.Context, listing domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings = append(r.listings, domain.ListingWithOwner{Listing: listing})
	return nil
}

func (r *memoryListingRepo) GetByID(_ context.Context, id string) (domain.ListingWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.ListingWithOwner{}, pgx.ErrNoRows
}

func (r *memoryListingRepo) List(_ context.Context) ([]domain.ListingWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ListingWithOwner, len(r.listings))
	copy(out, r.listings)
	return out, nil
}

func (r *memoryListingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.listings {
		if l.ID == id {
			r.listings = append(r.listings[:i], r.listings[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}
