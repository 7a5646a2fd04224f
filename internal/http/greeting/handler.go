// Package greeting serves the pipeline smoke-test greeting at the root path.
package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/pipeline-greeting/internal/platform/logging"
)

// Message is returned verbatim by GET /. Deployment checks compare it byte for byte.
const Message = "****************Hello from Flask CI/CD Pipeline****************"

// ContentType is the media type of the greeting response.
const ContentType = "text/plain; charset=utf-8"

var messageBytes = []byte(Message)

// GetOutput is the raw text response for GET /.
type GetOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Register wires the greeting route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Get the pipeline greeting",
		Description: "Returns a constant plain-text greeting used to verify deployments.",
		Tags:        []string{"Greeting"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Greeting text",
				Content: map[string]*huma.MediaType{
					"text/plain": {Schema: &huma.Schema{Type: huma.TypeString}},
				},
			},
		},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogDebug(ctx, "greeting served", zap.String("path", "/"))
	return &GetOutput{ContentType: ContentType, Body: messageBytes}, nil
}
