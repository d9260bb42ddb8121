package views

import (
	"google.golang.org/grpc"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/rpc"
)

// Registrar ties the View service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the View service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the View service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	rpc.RegisterViewServer(s, NewViewService(r.appCtx))
}
