package port

import "context"

// ClaimState reports what ClaimDelivery found for an order id.
type ClaimState int

const (
	// ClaimAcquired means the caller now owns the order and must deliver it.
	ClaimAcquired ClaimState = iota
	// ClaimInFlight means another caller holds the order and has not finished.
	ClaimInFlight
	// ClaimCompleted means the order was already delivered.
	ClaimCompleted
)

type CacheRepository interface {
	// ClaimDelivery marks an order as in flight unless someone already claimed or completed it
	ClaimDelivery(ctx context.Context, orderID int, token string) (ClaimState, error)

	// CompleteDelivery turns the caller's claim into a completed marker
	CompleteDelivery(ctx context.Context, orderID int, token string) error

	// ReleaseDelivery drops a claim so a failed delivery can be retried
	ReleaseDelivery(ctx context.Context, orderID int, token string) error
}
