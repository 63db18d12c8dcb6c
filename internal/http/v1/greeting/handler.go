package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/greeting-server/internal/platform/logging"
)

// Path is where the greeting is served.
const Path = "/"

// OperationID identifies the greeting operation.
const OperationID = "get-greeting"

// Register wires the greeting operation into the provided API.
// op supplies the method and path; the rest of the operation is filled here.
func Register(api huma.API, op huma.Operation) {
	op.OperationID = OperationID
	op.Summary = "Get the greeting"
	op.DefaultStatus = http.StatusOK
	huma.Register(api, op, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*Output, error) {
	applog.LogInfo(ctx, "greeting served")
	return &Output{Body: Data{Message: Message}}, nil
}
