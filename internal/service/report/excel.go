package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"monotributo-backend/internal/storage"
)

var activityTitles = map[storage.Activity]string{
	storage.ActivityServices: "Servicios",
	storage.ActivityGoods:    "Venta de cosas muebles",
}

// TableExporter renders the current dataset as an Excel workbook, one
// sheet for thresholds and one for payments.
type TableExporter struct {
	data *storage.Holder
}

func NewTableExporter(data *storage.Holder) *TableExporter {
	return &TableExporter{data: data}
}

func (e *TableExporter) Export(ctx context.Context) ([]byte, error) {
	const op = "service.report.Export"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ds := e.data.Get()

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := e.writeCategories(f, ds, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := e.writePayments(f, ds, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func (e *TableExporter) writeCategories(f *excelize.File, ds *storage.Dataset, headerStyle int) error {
	const sheet = "Categorías"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"Actividad", "Categ.", "Ingresos brutos", "Sup. afectada (m2)", "Energía (Kw)", "Alquileres", "Precio unitario máx."}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, act := range storage.Activities {
		for _, label := range ds.Categories.SortedCategories(act) {
			lim, _ := ds.Categories.Limits(act, label)
			values := []any{activityTitles[act], label, lim.Income, lim.Surface, lim.Energy, lim.Rent}
			if lim.MaxUnitPrice > 0 {
				values = append(values, lim.MaxUnitPrice)
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}
	return nil
}

func (e *TableExporter) writePayments(f *excelize.File, ds *storage.Dataset, headerStyle int) error {
	const sheet = "Pagos"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Actividad", "Categ.", "Impuesto", "SIPA", "Obra social", "Total", "AREF"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 2
	for _, act := range storage.Activities {
		labels := ds.Categories.SortedCategories(act)
		for _, label := range labels {
			pay, ok := ds.Payments.Amounts(act, label)
			if !ok {
				continue
			}
			values := []any{activityTitles[act], label, pay.TaxOnly, pay.Pension, pay.Health, pay.Full}
			if aref, ok := ds.Aref[label]; ok {
				values = append(values, aref)
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}
	return nil
}
