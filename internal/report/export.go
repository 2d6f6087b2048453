package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/sales"
)

// Row is one exported report line. The column layout (Date, Customer, Items,
// Total) is the whole contract of the export formats.
type Row struct {
	Date     string `json:"date"`
	Customer string `json:"customer"`
	Items    string `json:"items"`
	Total    int64  `json:"total"`
}

var exportHeader = []string{"Date", "Customer", "Items", "Total"}

// BuildRows flattens sales into export rows, resolving customer names from
// the given customer list. Unresolvable customers render as "Unknown".
func BuildRows(ss []sales.Sale, customers []catalog.Customer) []Row {
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	rows := make([]Row, 0, len(ss))
	for _, s := range ss {
		name, ok := names[s.CustomerID]
		if !ok {
			name = "Unknown"
		}
		parts := make([]string, 0, len(s.Items))
		for _, item := range s.Items {
			parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Qty))
		}
		rows = append(rows, Row{
			Date:     saleTime(s).Format("2006-01-02 15:04"),
			Customer: name,
			Items:    strings.Join(parts, ", "),
			Total:    s.Total,
		})
	}
	return rows
}

// WriteXLSX writes rows as a single-sheet spreadsheet.
func WriteXLSX(rows []Row, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	for i, row := range rows {
		values := []any{row.Date, row.Customer, row.Items, row.Total}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

// WritePDF writes rows as a simple table document.
func WritePDF(rows []Row, title string, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	widths := []float64{30, 40, 85, 25}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range exportHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		cells := []string{row.Date, row.Customer, row.Items, fmt.Sprintf("%d", row.Total)}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
