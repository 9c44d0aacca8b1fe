package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/internal/platform/auth"
)

// AccessEntry captures who touched what through the API: the authenticated
// user, the request, and the outcome.
type AccessEntry struct {
	UserID    string
	UserRoles []string
	Action    string // read, create, update, delete
	Path      string
	Method    string
	IPAddress string
	RequestID string
	Status    int
	Timestamp time.Time
}

// AccessRecorder persists access entries. Tests provide a mock; the server
// falls back to structured logging when none is given.
type AccessRecorder interface {
	RecordAccess(entry AccessEntry) error
}

// AccessRecorderFunc adapts a function to AccessRecorder.
type AccessRecorderFunc func(entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(entry AccessEntry) error { return f(entry) }

func actionFor(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return "read"
	}
}

// Audit logs every /api/v1 access with the authenticated identity. Referral
// cases carry patient data, so reads are recorded as well as writes.
func Audit(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.URL.Path, "/api/v1") {
				return next(c)
			}

			err := next(c)

			ctx := req.Context()
			rid, _ := c.Get("request_id").(string)
			entry := AccessEntry{
				UserID:    auth.UserIDFromContext(ctx),
				UserRoles: auth.RolesFromContext(ctx),
				Action:    actionFor(req.Method),
				Path:      req.URL.Path,
				Method:    req.Method,
				IPAddress: c.RealIP(),
				RequestID: rid,
				Status:    c.Response().Status,
				Timestamp: time.Now().UTC(),
			}

			recorded := false
			for _, r := range recorders {
				if recordErr := r.RecordAccess(entry); recordErr != nil {
					logger.Error().Err(recordErr).Msg("audit recorder failed")
				} else {
					recorded = true
				}
			}
			if !recorded {
				logger.Info().
					Str("user_id", entry.UserID).
					Strs("roles", entry.UserRoles).
					Str("action", entry.Action).
					Str("method", entry.Method).
					Str("path", entry.Path).
					Int("status", entry.Status).
					Str("request_id", entry.RequestID).
					Msg("api access")
			}

			return err
		}
	}
}
