package visibility

import (
	"google.golang.org/grpc"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/rpc"
)

// Registrar ties the Visibility service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Visibility service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Visibility service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	rpc.RegisterVisibilityServer(s, NewVisibilityService(r.appCtx))
}
