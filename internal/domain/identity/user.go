package identity

import (
	"context"
	"strings"
	"time"

	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Role is the closed set of user roles
type Role string

const (
	RoleUser    Role = "user"
	RoleArtisan Role = "artisan"
	RoleAdmin   Role = "admin"
)

// Address is a user's saved shipping address
type Address struct {
	ID                          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	valueobject.ShippingAddress `gorm:"embedded" json:"address"`
	CreatedAt                   time.Time `json:"created_at"`
}

// WishlistEntry links a user to a product they saved for later
type WishlistEntry struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a registered customer. Email is the correlation key the payment
// provider hands back on webhook confirmation.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:32;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:10;not null;default:user" json:"role"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new user
func NewUser(name, email string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "User email is not valid")
	}
	if role == "" {
		role = RoleUser
	}

	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRepository defines persistence operations for users and their
// wishlist and address book
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error

	AddWishlistEntry(ctx context.Context, entry *WishlistEntry) error
	RemoveWishlistEntry(ctx context.Context, userID, productID uuid.UUID) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntry, error)

	AddAddress(ctx context.Context, address *Address) error
	RemoveAddress(ctx context.Context, userID, addressID uuid.UUID) error
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error)
}
