package cli

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/session"
)

const sessionExpiredMessage = "session expired, please log in again"

// describeError turns a command error into what the operator should read
func describeError(err error) string {
	var verrs validation.Errors
	var apiErr *api.Error

	switch {
	case errors.Is(err, session.ErrSessionExpired), errors.Is(err, session.ErrUnauthenticated):
		return "🔒 " + sessionExpiredMessage
	case errors.As(err, &verrs):
		fields := form.FieldErrors(verrs)
		var b strings.Builder
		b.WriteString("❌ Please fix the following:")
		for _, k := range form.SortedKeys(fields) {
			fmt.Fprintf(&b, "\n  %s: %s", k, fields[k])
		}
		return b.String()
	case errors.As(err, &apiErr):
		return "❌ " + apiErr.Message
	case errors.Is(err, api.ErrNetwork):
		return "❌ Could not reach the backend. Check your connection or --api-url."
	default:
		return "❌ " + err.Error()
	}
}
