package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for carts.
// Delete must report shared.ErrNotFound for an absent cart: the
// cart-deleted-means-already-materialized property is what makes webhook
// redelivery a safe no-op.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
