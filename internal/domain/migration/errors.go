package migration

import "errors"

var (
	// ErrDuplicateName marks a destination rejection caused by a name or
	// title that is already in use. Resolved per the configured name
	// strategy.
	ErrDuplicateName = errors.New("migration: name already in use on destination")

	// ErrDuplicateSKU marks a destination rejection caused by a SKU that is
	// already in use. Resolved per the configured SKU strategy.
	ErrDuplicateSKU = errors.New("migration: sku already in use on destination")

	// ErrValueAlreadyUsed marks a destination rejection reporting that an
	// option, option value or metafield key is already present on the target
	// resource. Resolved by refetching and rebinding to the existing
	// resource; never surfaced as a failure when rebinding succeeds.
	ErrValueAlreadyUsed = errors.New("migration: value already used on destination resource")

	// ErrUnresolvedDependency marks an entity referencing an option or value
	// that could not be found or created on the destination. The entity is
	// abandoned; its siblings proceed.
	ErrUnresolvedDependency = errors.New("migration: unresolved destination dependency")

	// ErrVariantAbandoned marks a variant given up on after exhausting the
	// configured SKU conflict resolution.
	ErrVariantAbandoned = errors.New("migration: variant abandoned after conflict resolution")
)

// IsConflict reports whether err belongs to one of the recognized conflict
// classes a resolver may act on.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrDuplicateSKU) ||
		errors.Is(err, ErrValueAlreadyUsed)
}
