package expert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monotributo-backend/internal/storage"
)

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$466,361.15", formatAmount(466_361.15))
	assert.Equal(t, "$1,645,278.61", formatAmount(1_645_278.61))
	assert.Equal(t, "$500.00", formatAmount(500))

	assert.Equal(t, "30", formatNumber(30))
	assert.Equal(t, "3,330", formatNumber(3330))
	assert.Equal(t, "85.50", formatNumber(85.5))
}

func TestDynamicQuestionEmbedsThreshold(t *testing.T) {
	ds := testDataset()
	facts := &Facts{Activity: storage.ActivityServices, CurrentCategory: "B"}

	q, err := dynamicQuestion(ParamSurface, facts, ds)
	require.NoError(t, err)
	assert.Equal(t, "superficie_cat_B", q.ID)
	assert.Contains(t, q.Text, "45")
	assert.Equal(t, dynamicOptions, q.Options)

	q, err = dynamicQuestion(ParamRent, facts, ds)
	require.NoError(t, err)
	assert.Equal(t, "alquileres_cat_B", q.ID)
	assert.Contains(t, q.Text, "$100,000.00")

	_, err = dynamicQuestion(ParamEnergy, &Facts{CurrentCategory: "Z"}, ds)
	assert.Error(t, err)
}

func TestRenderQuestionFillsTemplate(t *testing.T) {
	ds := testDataset()
	q := &Question{
		ID:           "precio_unitario",
		Text:         "fallback",
		TextTemplate: "¿Supera los %s?",
		Kind:         InputOption,
	}

	out := renderQuestion(q, ds)
	assert.Equal(t, "¿Supera los $400,000.00?", out.Text)
	assert.Empty(t, out.TextTemplate)
	assert.Equal(t, "fallback", q.Text, "rule definitions are never mutated")

	t.Run("empty table keeps the fallback wording", func(t *testing.T) {
		out := renderQuestion(q, storage.EmptyDataset())
		assert.Equal(t, "fallback", out.Text)
	})
}
