package afip

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"monotributo-backend/internal/storage"
)

// DefaultURL is the official AFIP page listing the Monotributo brackets.
const DefaultURL = "https://www.afip.gob.ar/monotributo/categorias.asp"

// Scraper fetches the category and payment tables from the AFIP site.
// The whole exchange is bounded by the client timeout; callers fall back
// to the local snapshot on any error.
type Scraper struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

func New(url string, timeout time.Duration, log *slog.Logger) *Scraper {
	if url == "" {
		url = DefaultURL
	}
	return &Scraper{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fetch downloads and parses the bracket table. The page carries several
// tables; the right one has "Categ." as its first header and lists
// category K.
func (s *Scraper) Fetch(ctx context.Context) (storage.CategoryTable, storage.PaymentTable, error) {
	const op = "storage.afip.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	table := findBracketTable(doc)
	if table == nil {
		return nil, nil, fmt.Errorf("%s: bracket table not found at %s", op, s.url)
	}

	categories, payments := parseBracketTable(table)
	if warnings, err := storage.Verify(categories, payments); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	} else {
		for _, w := range warnings {
			s.log.Warn("scraped data incomplete", slog.String("op", op), slog.String("warning", w))
		}
	}
	return categories, payments, nil
}

func findBracketTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headers := headerTexts(table)
		if len(headers) == 0 || !strings.Contains(headers[0], "Categ") {
			return true
		}
		hasK := false
		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			if strings.TrimSpace(row.Find("td").First().Text()) == "K" {
				hasK = true
			}
		})
		if hasK {
			found = table
			return false
		}
		return true
	})
	return found
}

func headerTexts(table *goquery.Selection) []string {
	rows := table.Find("thead tr")
	if rows.Length() == 0 {
		rows = table.Find("tr").First()
	}

	var headers []string
	set := func(col int, text string) {
		for col >= len(headers) {
			headers = append(headers, "")
		}
		if headers[col] == "" {
			headers[col] = text
		} else if text != "" {
			headers[col] += " " + text
		}
	}

	// Multi-row headers are flattened by joining the rows cell-wise. The
	// page groups "Impuesto integrado" and "Total" over per-activity
	// subheaders, and spans the single-row columns with rowspan, so cells
	// of later rows must be shifted past the columns still covered from
	// above.
	covered := make(map[int]int)
	rows.Each(func(_ int, row *goquery.Selection) {
		col := 0
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			for covered[col] > 0 {
				covered[col]--
				col++
			}
			text := strings.Join(strings.Fields(cell.Text()), " ")
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			for i := 0; i < colspan; i++ {
				set(col, text)
				if rowspan > 1 {
					covered[col] = rowspan - 1
				}
				col++
			}
		})
	})
	return headers
}

func spanAttr(cell *goquery.Selection, name string) int {
	if v, ok := cell.Attr(name); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			return n
		}
	}
	return 1
}

// column keyword sets, matched case-insensitively against the flattened
// header text.
var columnKeywords = map[string][]string{
	"income":       {"ingresos"},
	"surface":      {"sup"},
	"energy":       {"energ"},
	"rent":         {"alquiler"},
	"unitPrice":    {"precio", "unitario"},
	"taxServices":  {"impuesto", "servicios"},
	"taxGoods":     {"impuesto", "muebles"},
	"pension":      {"sipa"},
	"health":       {"obra social"},
	"fullServices": {"total", "servicios"},
	"fullGoods":    {"total", "muebles"},
}

func classifyColumns(headers []string) map[string]int {
	cols := make(map[string]int)
	for idx, header := range headers {
		h := strings.ToLower(header)
		for field, keywords := range columnKeywords {
			if _, taken := cols[field]; taken {
				continue
			}
			match := true
			for _, kw := range keywords {
				if !strings.Contains(h, kw) {
					match = false
					break
				}
			}
			if match {
				cols[field] = idx
			}
		}
	}
	return cols
}

func parseBracketTable(table *goquery.Selection) (storage.CategoryTable, storage.PaymentTable) {
	categories := storage.CategoryTable{storage.ActivityServices: {}, storage.ActivityGoods: {}}
	payments := storage.PaymentTable{storage.ActivityServices: {}, storage.ActivityGoods: {}}

	cols := classifyColumns(headerTexts(table))

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr").Slice(1, goquery.ToEnd)
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(cells) == 0 {
			return
		}
		label := strings.TrimSpace(cells[0])
		if len(label) != 1 || label < "A" || label > "Z" {
			return
		}

		cellValue := func(field string) (float64, bool) {
			idx, ok := cols[field]
			if !ok || idx >= len(cells) {
				return 0, false
			}
			return CleanValue(cells[idx])
		}

		var limits storage.CategoryLimits
		limits.Income, _ = cellValue("income")
		limits.Surface, _ = cellValue("surface")
		limits.Energy, _ = cellValue("energy")
		limits.Rent, _ = cellValue("rent")
		if label == "A" {
			limits.MaxUnitPrice, _ = cellValue("unitPrice")
		}
		// Thresholds are shared between both activities; only the tax
		// component differs.
		categories[storage.ActivityServices][label] = limits
		categories[storage.ActivityGoods][label] = limits

		pension, _ := cellValue("pension")
		health, _ := cellValue("health")
		if tax, ok := cellValue("taxServices"); ok {
			full, _ := cellValue("fullServices")
			payments[storage.ActivityServices][label] = storage.PaymentAmounts{
				TaxOnly: tax, Full: full, Pension: pension, Health: health,
			}
		}
		if tax, ok := cellValue("taxGoods"); ok {
			full, _ := cellValue("fullGoods")
			payments[storage.ActivityGoods][label] = storage.PaymentAmounts{
				TaxOnly: tax, Full: full, Pension: pension, Health: health,
			}
		}
	})
	return categories, payments
}

// CleanValue converts a published cell ("$ 7.813.063,45", "Hasta 30 m2",
// "Hasta 3330 Kw") to a float. Non-positive or unparseable values are
// reported as absent.
func CleanValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "nan", "none", "-":
		return 0, false
	}
	s = strings.NewReplacer("$", "", "Hasta ", "", " m2", "", " Kw", "", " ", " ").Replace(s)
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// Argentine notation: dots group thousands, comma is the decimal
		// separator.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
