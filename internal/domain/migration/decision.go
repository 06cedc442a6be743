package migration

import "errors"

// ---------------------------------------------------------------------------
// Strategies
// ---------------------------------------------------------------------------

// NameStrategy decides what happens when a source product matches an existing
// destination product by equivalence key.
type NameStrategy string

const (
	// NameStrategyUpdate updates the matched destination product in place.
	NameStrategyUpdate NameStrategy = "update"
	// NameStrategySuffix always creates, disambiguating the name with the
	// configured suffix.
	NameStrategySuffix NameStrategy = "suffix"
	// NameStrategySkip leaves the matched destination product untouched.
	NameStrategySkip NameStrategy = "skip"
)

// IsValid returns true for a known name strategy.
func (s NameStrategy) IsValid() bool {
	switch s {
	case NameStrategyUpdate, NameStrategySuffix, NameStrategySkip:
		return true
	default:
		return false
	}
}

// SKUStrategy decides what happens when a variant create is rejected for a
// duplicate SKU.
type SKUStrategy string

const (
	// SKUStrategySuffix retries with the configured suffix, then "-2", "-3"
	// and so on, up to a bounded attempt count.
	SKUStrategySuffix SKUStrategy = "suffix"
	// SKUStrategyBlank retries the identical create with the SKU omitted.
	SKUStrategyBlank SKUStrategy = "blank"
	// SKUStrategySkip abandons the variant.
	SKUStrategySkip SKUStrategy = "skip"
)

// IsValid returns true for a known SKU strategy.
func (s SKUStrategy) IsValid() bool {
	switch s {
	case SKUStrategySuffix, SKUStrategyBlank, SKUStrategySkip:
		return true
	default:
		return false
	}
}

// FieldStrategy decides how custom fields are deduplicated against fields
// already present on the destination product.
type FieldStrategy string

const (
	// FieldStrategyPair treats the (name, value) tuple as the uniqueness
	// key. A field whose exact pair exists is skipped; a field with a known
	// name but a new value is created alongside, so several fields may share
	// a name. This mirrors the source platform's semantics on purpose.
	FieldStrategyPair FieldStrategy = "pair"
	// FieldStrategyOverwriteByName treats the name as the uniqueness key and
	// rewrites the existing field's value.
	FieldStrategyOverwriteByName FieldStrategy = "overwrite_by_name"
)

// IsValid returns true for a known field strategy.
func (s FieldStrategy) IsValid() bool {
	switch s {
	case FieldStrategyPair, FieldStrategyOverwriteByName:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Decisions
// ---------------------------------------------------------------------------

// Decision is the reconciliation outcome for one source entity.
type Decision string

const (
	// DecisionReuse binds the source entity to the matched destination
	// entity without writing.
	DecisionReuse Decision = "reuse"
	// DecisionCreate creates a new destination entity.
	DecisionCreate Decision = "create"
	// DecisionCreateSuffixed creates a new destination entity under a
	// suffixed, disambiguated name.
	DecisionCreateSuffixed Decision = "create_suffixed"
	// DecisionUpdate updates the matched destination entity in place.
	DecisionUpdate Decision = "update"
	// DecisionSkip leaves the destination untouched.
	DecisionSkip Decision = "skip"
)

// ErrUnknownStrategy is returned when a decision is requested for a strategy
// value that passed no validation.
var ErrUnknownStrategy = errors.New("migration: unknown reconciliation strategy")

// DecideProduct derives the reconciliation decision for a product from its
// match result and the configured name strategy. For a fixed destination
// state and source entity the result is deterministic, which is what makes
// re-runs idempotent.
func DecideProduct(matched bool, strategy NameStrategy) (Decision, error) {
	if !strategy.IsValid() {
		return "", ErrUnknownStrategy
	}
	if !matched {
		return DecisionCreate, nil
	}
	switch strategy {
	case NameStrategyUpdate:
		return DecisionUpdate, nil
	case NameStrategySuffix:
		return DecisionCreateSuffixed, nil
	default:
		return DecisionSkip, nil
	}
}

// DecideShared derives the decision for entities that are reused on match
// and never updated: brands, categories, options.
func DecideShared(matched bool) Decision {
	if matched {
		return DecisionReuse
	}
	return DecisionCreate
}
