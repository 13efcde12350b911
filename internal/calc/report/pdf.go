package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
)

// PDF writes the report as an A4 document.
func PDF(doc Document, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if doc.Project != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Project: %s", doc.Project))
		pdf.Ln(6)
	}
	if doc.Author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Author: %s", doc.Author))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", doc.Date.Format("2006-01-02")))
	pdf.Ln(10)

	if doc.Mass == nil && doc.Area == nil {
		pdf.Cell(0, 6, "No FFB mass or plantation area given.")
		pdf.Ln(10)
	}

	if m := doc.Mass; m != nil {
		heading(pdf, fmt.Sprintf("Biomass generated for %s MT of FFB", trimFloat(m.FFBMT)))
		pdf.Cell(0, 6, fmt.Sprintf("Preset: %s", m.Preset))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 7, "Component", "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, "Ratio", "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, "Quantity", "1", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, q := range m.Items {
			pdf.CellFormat(100, 7, q.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 7, fmt.Sprintf("%.1f%%", q.Ratio*100), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 7, FormatMT(q.MT), "1", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 7, "Total", "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%.1f%%", m.SumPercentage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, FormatMT(m.TotalMT), "1", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.Ln(4)
		if m.Warning != nil {
			pdf.MultiCell(0, 6, "Note: "+m.Warning.Message+".", "", "L", false)
			pdf.Ln(2)
		}
	}

	if a := doc.Area; a != nil {
		heading(pdf, fmt.Sprintf("Biomass produced from plantation area of %s ha", trimFloat(a.AreaHA)))
		pdf.Cell(0, 6, fmt.Sprintf("Oil Palm Frond (OPF): %s (%.2f MT/ha)", FormatMT(a.FrondMT), a.FrondMTPerHA))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Oil Palm Trunk (OPT): %s (%.2f MT/ha)", FormatMT(a.TrunkMT), a.TrunkMTPerHA))
		pdf.Ln(10)
	}

	if doc.Notes != "" {
		heading(pdf, "Notes")
		pdf.MultiCell(0, 6, doc.Notes, "", "L", false)
		pdf.Ln(4)
	}

	if lines := glossary(doc); len(lines) > 0 {
		heading(pdf, "Biomass components")
		pdf.SetFont("Helvetica", "", 9)
		for _, line := range lines {
			pdf.MultiCell(0, 5, stripBold(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	heading(pdf, "References")
	pdf.SetFont("Helvetica", "", 8)
	for _, ref := range References {
		pdf.MultiCell(0, 4, ref, "", "L", false)
		pdf.Ln(1)
	}
	return pdf.Output(w)
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, text)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func stripBold(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r != '*' {
			out = append(out, r)
		}
	}
	return string(out)
}
