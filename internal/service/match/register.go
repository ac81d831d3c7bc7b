package match

import (
	"google.golang.org/grpc"

	"github.com/oggyb/speedy-match/internal/app"
	pb "github.com/oggyb/speedy-match/internal/proto/match"
)

// Registrar ties the Match service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Match service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Match service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	pb.RegisterMatchServiceServer(s, NewHandler(NewMatchService(r.appCtx)))
}
