package identity

import (
	"context"
	"time"

	"github.com/craftshop/backend/internal/domain/identity"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user profile, wishlist and address book use cases
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, name, email string, role identity.Role) (*identity.User, error) {
	user, err := identity.NewUser(name, email, role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user",
			zap.String("email", email),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("Registered user",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

// AddToWishlist saves a product to the user's wishlist
func (s *UserService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.userRepo.AddWishlistEntry(ctx, &identity.WishlistEntry{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	})
}

// RemoveFromWishlist removes a product from the user's wishlist
func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.userRepo.RemoveWishlistEntry(ctx, userID, productID)
}

// ListWishlist lists the user's wishlist entries
func (s *UserService) ListWishlist(ctx context.Context, userID uuid.UUID) ([]identity.WishlistEntry, error) {
	return s.userRepo.ListWishlist(ctx, userID)
}

// AddAddress saves a shipping address to the user's address book
func (s *UserService) AddAddress(ctx context.Context, userID uuid.UUID, address valueobject.ShippingAddress) (*identity.Address, error) {
	entry := &identity.Address{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: address.Normalize(),
		CreatedAt:       time.Now(),
	}
	if err := s.userRepo.AddAddress(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveAddress removes an address from the user's address book
func (s *UserService) RemoveAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.userRepo.RemoveAddress(ctx, userID, addressID)
}

// ListAddresses lists the user's saved addresses
func (s *UserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]identity.Address, error) {
	return s.userRepo.ListAddresses(ctx, userID)
}
