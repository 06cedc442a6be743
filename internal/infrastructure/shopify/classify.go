package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cartbridge/cartbridge/internal/domain/migration"
	"github.com/cartbridge/cartbridge/internal/infrastructure/transport"
)

// classifyWriteError maps a destination rejection onto the migration
// package's conflict classes. The signature test is status 422 plus a
// message-pattern match against the error body, and it is the same test on
// every retry attempt: an unrelated 422 must not be mistaken for a known
// conflict. Unrecognized failures pass through unchanged.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	var reqErr *transport.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusUnprocessableEntity {
		return err
	}

	detail := strings.ToLower(reqErr.Detail)
	taken := strings.Contains(detail, "has already been taken")

	switch {
	case taken && mentionsField(detail, "sku"):
		return fmt.Errorf("%w: %s", migration.ErrDuplicateSKU, reqErr.Detail)
	case taken && (mentionsField(detail, "title") || mentionsField(detail, "handle")):
		return fmt.Errorf("%w: %s", migration.ErrDuplicateName, reqErr.Detail)
	case strings.Contains(detail, "already exists"),
		strings.Contains(detail, "must be unique"),
		taken && mentionsField(detail, "name"):
		return fmt.Errorf("%w: %s", migration.ErrValueAlreadyUsed, reqErr.Detail)
	default:
		return err
	}
}

// mentionsField reports whether the error body keys the message on the given
// field. Shopify 422 bodies look like {"errors":{"title":["has already been
// taken"]}}; a quoted field name is a reliable signature without parsing the
// body twice.
func mentionsField(detail, field string) bool {
	return strings.Contains(detail, `"`+field+`"`)
}
