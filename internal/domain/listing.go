package domain

import "time"

type Listing struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	ZipCode     string    `json:"zip_code"`
	Surface     float64   `json:"surface"`
	Rooms       int       `json:"rooms"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingOwner es la vista publica del propietario de un anuncio.
type ListingOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ListingWithOwner struct {
	Listing
	Owner ListingOwner `json:"owner"`
}
