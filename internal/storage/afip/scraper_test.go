package afip

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monotributo-backend/internal/storage"
)

func TestCleanValue(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		want  float64
		valid bool
	}{
		{"plain amount", "$ 7.813.063,45", 7_813_063.45, true},
		{"amount without space", "$466.361,15", 466_361.15, true},
		{"surface", "Hasta 30 m2", 30, true},
		{"energy", "Hasta 3330 Kw", 3330, true},
		{"decimal only", "12352,64", 12_352.64, true},
		{"integer", "200", 200, true},
		{"non-breaking space", "$ 7.813.063,45", 7_813_063.45, true},
		{"empty", "", 0, false},
		{"dash", "-", 0, false},
		{"nan", "NaN", 0, false},
		{"text", "No aplica", 0, false},
		{"zero", "0,00", 0, false},
		{"negative", "-100,00", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CleanValue(tc.raw)
			assert.Equal(t, tc.valid, ok)
			if tc.valid {
				assert.InDelta(t, tc.want, got, 0.001)
			}
		})
	}
}

// bracketPage mimics the published layout: a grouped two-row header and
// one decoy table before the real one.
const bracketPage = `<html><body>
<table>
  <tr><th>Otro</th><th>Dato</th></tr>
  <tr><td>x</td><td>y</td></tr>
</table>
<table>
  <thead>
    <tr>
      <th rowspan="2">Categ.</th>
      <th rowspan="2">Ingresos brutos</th>
      <th rowspan="2">Sup. afectada</th>
      <th rowspan="2">Energía eléctrica</th>
      <th rowspan="2">Alquileres devengados</th>
      <th rowspan="2">Precio unitario máximo</th>
      <th colspan="2">Impuesto integrado</th>
      <th rowspan="2">Aportes SIPA</th>
      <th rowspan="2">Aportes Obra Social</th>
      <th colspan="2">Total</th>
    </tr>
    <tr>
      <th>Locaciones y prestaciones de servicios</th>
      <th>Venta de cosas muebles</th>
      <th>Locaciones y prestaciones de servicios</th>
      <th>Venta de cosas muebles</th>
    </tr>
  </thead>
  <tbody>
    <tr>
      <td>A</td><td>$ 7.813.063,45</td><td>Hasta 30 m2</td><td>Hasta 3330 Kw</td>
      <td>$ 1.645.278,61</td><td>$ 466.361,15</td>
      <td>$ 3.633,22</td><td>$ 3.633,22</td>
      <td>$ 12.352,64</td><td>$ 21.099,88</td>
      <td>$ 37.085,74</td><td>$ 37.085,74</td>
    </tr>
    <tr>
      <td>K</td><td>$ 94.805.682,90</td><td>Hasta 200 m2</td><td>Hasta 20000 Kw</td>
      <td>$ 2.741.339,35</td><td>No aplica</td>
      <td>$ 735.000,00</td><td>$ 525.000,00</td>
      <td>$ 45.000,00</td><td>$ 30.000,00</td>
      <td>$ 810.000,00</td><td>$ 600.000,00</td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(bracketPage))
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(discard{}, nil))
	s := New(srv.URL, 0, log)

	categories, payments, err := s.Fetch(context.Background())
	require.NoError(t, err)

	limA, ok := categories.Limits(storage.ActivityServices, "A")
	require.True(t, ok)
	assert.InDelta(t, 7_813_063.45, limA.Income, 0.001)
	assert.InDelta(t, 30, limA.Surface, 0.001)
	assert.InDelta(t, 3330, limA.Energy, 0.001)
	assert.InDelta(t, 1_645_278.61, limA.Rent, 0.001)

	// The unit price cap is only published for category A.
	goodsA, _ := categories.Limits(storage.ActivityGoods, "A")
	assert.InDelta(t, 466_361.15, goodsA.MaxUnitPrice, 0.001)
	goodsK, _ := categories.Limits(storage.ActivityGoods, "K")
	assert.Zero(t, goodsK.MaxUnitPrice)

	payK, ok := payments.Amounts(storage.ActivityServices, "K")
	require.True(t, ok)
	assert.InDelta(t, 735_000, payK.TaxOnly, 0.001)
	assert.InDelta(t, 810_000, payK.Full, 0.001)
	assert.InDelta(t, 45_000, payK.Pension, 0.001)

	goodsPayK, ok := payments.Amounts(storage.ActivityGoods, "K")
	require.True(t, ok)
	assert.InDelta(t, 525_000, goodsPayK.TaxOnly, 0.001)
	assert.InDelta(t, 600_000, goodsPayK.Full, 0.001)
}

func TestFetchNoBracketTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table><tr><th>Nada</th></tr></table></body></html>`))
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(discard{}, nil))
	s := New(srv.URL, 0, log)

	_, _, err := s.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(discard{}, nil))
	s := New(srv.URL, 0, log)

	_, _, err := s.Fetch(context.Background())
	assert.Error(t, err)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
