package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideProduct(t *testing.T) {
	tests := []struct {
		name     string
		matched  bool
		strategy NameStrategy
		want     Decision
	}{
		{"no match always creates", false, NameStrategyUpdate, DecisionCreate},
		{"no match under suffix creates plain", false, NameStrategySuffix, DecisionCreate},
		{"no match under skip creates", false, NameStrategySkip, DecisionCreate},
		{"match under update", true, NameStrategyUpdate, DecisionUpdate},
		{"match under suffix", true, NameStrategySuffix, DecisionCreateSuffixed},
		{"match under skip", true, NameStrategySkip, DecisionSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecideProduct(tt.matched, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideProductUnknownStrategy(t *testing.T) {
	_, err := DecideProduct(true, NameStrategy("merge"))
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestDecideProductDeterministic(t *testing.T) {
	// Same inputs, same decision, every time.
	for i := 0; i < 5; i++ {
		got, err := DecideProduct(true, NameStrategyUpdate)
		require.NoError(t, err)
		assert.Equal(t, DecisionUpdate, got)
	}
}

func TestDecideShared(t *testing.T) {
	assert.Equal(t, DecisionReuse, DecideShared(true))
	assert.Equal(t, DecisionCreate, DecideShared(false))
}

func TestStrategyValidity(t *testing.T) {
	assert.True(t, NameStrategyUpdate.IsValid())
	assert.True(t, NameStrategySuffix.IsValid())
	assert.True(t, NameStrategySkip.IsValid())
	assert.False(t, NameStrategy("").IsValid())
	assert.False(t, NameStrategy("merge").IsValid())

	assert.True(t, SKUStrategySuffix.IsValid())
	assert.True(t, SKUStrategyBlank.IsValid())
	assert.True(t, SKUStrategySkip.IsValid())
	assert.False(t, SKUStrategy("drop").IsValid())

	assert.True(t, FieldStrategyPair.IsValid())
	assert.True(t, FieldStrategyOverwriteByName.IsValid())
	assert.False(t, FieldStrategy("merge").IsValid())
}

func TestSummaryRecord(t *testing.T) {
	var s Summary
	s.Kind = "products"
	s.Record(DecisionCreate)
	s.Record(DecisionCreateSuffixed)
	s.Record(DecisionUpdate)
	s.Record(DecisionReuse)
	s.Record(DecisionSkip)
	s.Failed++

	assert.Equal(t, 2, s.Created)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, s.Reused)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 6, s.Total())
	assert.Equal(t, "products: 2 created, 1 updated, 1 reused, 1 skipped, 1 failed", s.String())
}

func TestTable(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, 0, tbl.Len())

	tbl.Put(1, 101)
	tbl.Put(2, 102)
	tbl.Put(1, 101)

	assert.Equal(t, 2, tbl.Len())

	id, ok := tbl.Get(1)
	assert.True(t, ok)
	assert.Equal(t, int64(101), id)

	_, ok = tbl.Get(99)
	assert.False(t, ok)
}
