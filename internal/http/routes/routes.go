package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/pipeline-greeting/internal/http/greeting"
)

// Register wires all huma operations into the provided API router.
func Register(api huma.API) {
	greeting.Register(api)
}
