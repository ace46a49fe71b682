package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

const timestampLayout = "2006-01-02 15:04:05"

func writePDF(path string, rep Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(rep.Title, true)
	doc.SetCreator("docqa", true)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	// Core fonts are cp1252; translate so accented text survives.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 10, tr(rep.Title), "", "C", false)
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(100, 100, 100)
	doc.MultiCell(0, 6, "Generated: "+rep.GeneratedAt.Format(timestampLayout), "", "C", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(8)

	for i, e := range rep.Entries {
		if len(rep.Entries) > 1 {
			doc.SetFont("Helvetica", "B", 13)
			doc.MultiCell(0, 8, fmt.Sprintf("Entry %d", i+1), "", "L", false)
			if !e.Timestamp.IsZero() {
				doc.SetFont("Helvetica", "I", 9)
				doc.MultiCell(0, 5, e.Timestamp.Format(timestampLayout), "", "L", false)
			}
			doc.Ln(2)
		}

		doc.SetFont("Helvetica", "B", 12)
		doc.MultiCell(0, 7, "Question:", "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(e.Question), "", "L", false)
		doc.Ln(3)

		doc.SetFont("Helvetica", "B", 12)
		doc.MultiCell(0, 7, "Answer:", "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(e.Answer), "", "L", false)
		doc.Ln(8)
	}

	return doc.OutputFileAndClose(path)
}
