package payments

import (
	"google.golang.org/grpc"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/rpc"
)

// Registrar ties the Payment service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Payment service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Payment service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	rpc.RegisterPaymentServer(s, NewPaymentService(r.appCtx))
}
