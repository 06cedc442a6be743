package migration

import "fmt"

// Summary accumulates per-kind outcome counts for one migration pass. A
// failed entity increments Failed and never aborts its siblings; the run
// always ends by reporting every pass's summary.
type Summary struct {
	Kind    string
	Created int
	Updated int
	Reused  int
	Skipped int
	Failed  int
}

// Record bumps the counter matching a decision outcome.
func (s *Summary) Record(d Decision) {
	switch d {
	case DecisionCreate, DecisionCreateSuffixed:
		s.Created++
	case DecisionUpdate:
		s.Updated++
	case DecisionReuse:
		s.Reused++
	case DecisionSkip:
		s.Skipped++
	}
}

// Total returns the number of entities the pass considered.
func (s *Summary) Total() int {
	return s.Created + s.Updated + s.Reused + s.Skipped + s.Failed
}

// String renders the summary in the run report format.
func (s *Summary) String() string {
	return fmt.Sprintf("%s: %d created, %d updated, %d reused, %d skipped, %d failed",
		s.Kind, s.Created, s.Updated, s.Reused, s.Skipped, s.Failed)
}
