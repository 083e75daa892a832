package courier

import (
	"context"

	"github.com/nazmulhossain/shopdesk-backend/pkg/pathao"
)

// Provider is the courier surface the bridge depends on. The Pathao client
// satisfies it; tests substitute a fake.
type Provider interface {
	StoreID(brand string) (string, error)
	CreateConsignment(ctx context.Context, brand string, req pathao.CreateOrderRequest) (*pathao.Consignment, error)
	GetStatus(ctx context.Context, brand, consignmentID string) (*pathao.ConsignmentStatus, error)
}

var _ Provider = (*pathao.Client)(nil)
