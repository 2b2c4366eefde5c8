package fiber

import (
	"errors"
	"net/http"

	"event-telemetry/internal/projects/core/ports"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const (
	// APIKeyHeader carries the project API key on ingestion requests.
	APIKeyHeader = "X-API-Key"

	projectIDLocal = "projectID"
)

// APIKeyAuth resolves the X-API-Key header to a project and stores its id
// in the request locals. Unknown keys get 401; reader failures get 500.
func APIKeyAuth(reader ports.ProjectReaderPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get(APIKeyHeader)
		if apiKey == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing_api_key",
			})
		}

		project, err := reader.GetByAPIKey(c.UserContext(), apiKey)
		if err != nil {
			if errors.Is(err, ports.ErrProjectNotFound) {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid_api_key",
				})
			}
			log.WithError(err).Error("api key lookup failed")
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_server_error",
			})
		}

		c.Locals(projectIDLocal, project.ProjectID)
		return c.Next()
	}
}

// ProjectIDFromCtx returns the project id stored by APIKeyAuth, or "" when
// the request did not pass through the middleware.
func ProjectIDFromCtx(c *fiber.Ctx) string {
	if id, ok := c.Locals(projectIDLocal).(string); ok {
		return id
	}
	return ""
}
