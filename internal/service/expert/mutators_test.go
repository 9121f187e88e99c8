package expert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monotributo-backend/internal/storage"
)

func TestCategoryFromIncome(t *testing.T) {
	ds := testDataset()

	cases := []struct {
		name   string
		income float64
		want   string
	}{
		{"below first threshold", 500_000, "A"},
		{"exactly on a threshold", 3_000_000, "C"},
		{"just above a threshold", 3_000_001, "D"},
		{"top category", 11_000_000, "K"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facts := &Facts{Activity: storage.ActivityGoods}
			require.NoError(t, categoryFromIncome(facts, &tc.income, ds))
			assert.Equal(t, tc.want, facts.CurrentCategory)
			assert.Equal(t, tc.want, facts.FinalCategory)
		})
	}

	t.Run("income above every category", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityGoods}
		income := 50_000_000.0
		assert.Error(t, categoryFromIncome(facts, &income, ds))
	})

	t.Run("missing value", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices}
		assert.Error(t, categoryFromIncome(facts, nil, ds))
	})

	t.Run("cap clamps goods sellers down", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityGoods, MaxCategory: "C"}
		income := 6_000_000.0
		require.NoError(t, categoryFromIncome(facts, &income, ds))
		assert.Equal(t, "C", facts.FinalCategory)
	})
}

func TestAdvanceCategoryByParameter(t *testing.T) {
	ds := testDataset()

	t.Run("surface moves one category up", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, CurrentCategory: "A"}
		require.NoError(t, advanceCategoryByParameter(facts, ParamSurface, ds))
		assert.Equal(t, "B", facts.CurrentCategory)
		assert.False(t, facts.ExceedsParams)
	})

	t.Run("rent skips categories sharing the threshold", func(t *testing.T) {
		// Rents in the fixture repeat per pair: A and B share a figure,
		// so the rent hop from A lands on C.
		facts := &Facts{Activity: storage.ActivityServices, CurrentCategory: "A"}
		require.NoError(t, advanceCategoryByParameter(facts, ParamRent, ds))
		assert.Equal(t, "C", facts.CurrentCategory)
	})

	t.Run("top of the table is idempotent", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, CurrentCategory: "K"}
		require.NoError(t, advanceCategoryByParameter(facts, ParamSurface, ds))
		assert.True(t, facts.ExceedsParams)
		assert.Equal(t, "K", facts.CurrentCategory)

		// A replayed answer must not move anything further.
		require.NoError(t, advanceCategoryByParameter(facts, ParamSurface, ds))
		assert.True(t, facts.ExceedsParams)
		assert.Equal(t, "K", facts.CurrentCategory)
	})

	t.Run("unknown category errors", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, CurrentCategory: "Z"}
		assert.Error(t, advanceCategoryByParameter(facts, ParamSurface, ds))
	})
}

func TestComputeFinalPayments(t *testing.T) {
	ds := testDataset()

	t.Run("independent worker pays everything", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, FinalCategory: "E"}
		computeFinalPayments(facts, false, ds)

		require.Empty(t, facts.Err)
		result := facts.Result
		require.NotNil(t, result)
		assert.InDelta(t, 6200, result.TotalNational, 0.001)
		assert.InDelta(t, 3000, result.TotalRegional, 0.001)
		assert.InDelta(t, result.TotalNational+result.TotalRegional, result.TotalGeneral, 0.001)
	})

	t.Run("dependent worker pays only the tax", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, FinalCategory: "E"}
		computeFinalPayments(facts, true, ds)

		result := facts.Result
		require.NotNil(t, result)
		assert.Nil(t, result.National.Pension)
		assert.Nil(t, result.National.Health)
		assert.InDelta(t, 5000, result.TotalNational, 0.001)
		assert.True(t, result.DependentWorker)
	})

	t.Run("category without surcharge", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, FinalCategory: "B"}
		computeFinalPayments(facts, false, ds)

		result := facts.Result
		require.NotNil(t, result)
		assert.Nil(t, result.Regional.Aref)
		assert.Zero(t, result.TotalRegional)
		assert.InDelta(t, result.TotalNational, result.TotalGeneral, 0.001)
	})

	t.Run("missing payment data is recorded as an error fact", func(t *testing.T) {
		facts := &Facts{Activity: storage.ActivityServices, FinalCategory: "Z"}
		computeFinalPayments(facts, false, ds)

		assert.NotEmpty(t, facts.Err)
		assert.Nil(t, facts.Result)
	})
}

func TestClassifyActivity(t *testing.T) {
	t.Run("services", func(t *testing.T) {
		facts := &Facts{}
		classifyActivity(facts, "SÍ (Prestación de Servicios)")
		assert.Equal(t, storage.ActivityServices, facts.Activity)
		assert.Empty(t, facts.CurrentCategory)
	})

	t.Run("goods start at the lowest category", func(t *testing.T) {
		facts := &Facts{}
		classifyActivity(facts, "NO (Venta de Cosas Muebles)")
		assert.Equal(t, storage.ActivityGoods, facts.Activity)
		assert.Equal(t, "A", facts.CurrentCategory)
	})
}
