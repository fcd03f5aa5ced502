package gateway

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/service"
	"github.com/fsdevblog/creator-market/internal/transport/gateway/client"
)

type Client interface {
	GetTransactionStatus(ctx context.Context, reference string) (*client.Response, error)
}

type Servicer interface {
	PaymentsForVerification(ctx context.Context, limit uint) ([]domain.Payment, error)
	ApplyVerification(ctx context.Context, updates []service.VerificationArgs) error
}
