// Package report renders a Q&A session to a downloadable PDF.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"policyqa/internal/session"
)

var ErrEmptyHistory = errors.New("no conversation history to export")

type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// Generate writes the conversation history as a PDF under the output
// directory and returns the report filename.
func (g *Generator) Generate(userLabel string, history []session.ConversationEntry) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(37, 99, 235)
	pdf.MultiCell(0, 12, "Insurance Q&A Report", "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(55, 65, 81)
	pdf.MultiCell(0, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"), "", "L", false)
	if userLabel != "" {
		pdf.MultiCell(0, 6, "User: "+userLabel, "", "L", false)
	}
	pdf.Ln(6)

	for i, entry := range history {
		g.writeEntry(pdf, i+1, entry)
		if i < len(history)-1 {
			pdf.Ln(2)
			pdf.SetDrawColor(107, 114, 128)
			x, y := pdf.GetXY()
			pageWidth, _ := pdf.GetPageSize()
			pdf.Line(x, y, pageWidth-25, y)
			pdf.Ln(6)
		}
	}

	filename := fmt.Sprintf("qa_report_%s_%s.pdf",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	if err := pdf.OutputFileAndClose(filepath.Join(g.outputDir, filename)); err != nil {
		return "", fmt.Errorf("write report pdf failed: %w", err)
	}
	return filename, nil
}

func (g *Generator) writeEntry(pdf *fpdf.Fpdf, n int, entry session.ConversationEntry) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(31, 41, 55)
	pdf.MultiCell(0, 8, fmt.Sprintf("Question %d:", n), "", "L", false)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(55, 65, 81)
	pdf.MultiCell(0, 6, entry.Question, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(31, 41, 55)
	pdf.MultiCell(0, 8, "Answer:", "", "L", false)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(55, 65, 81)
	pdf.MultiCell(0, 6, entry.Answer, "", "L", false)
	pdf.Ln(2)

	if len(entry.Sources) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(31, 41, 55)
	pdf.MultiCell(0, 7, "Sources:", "", "L", false)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(107, 114, 128)
	left, _, _, _ := pdf.GetMargins()
	for _, src := range entry.Sources {
		pdf.SetLeftMargin(left + 8)
		pdf.MultiCell(0, 5, "From "+src.Document+":", "", "L", false)
		pdf.MultiCell(0, 5, src.Text, "", "L", false)
		pdf.SetLeftMargin(left)
		pdf.Ln(2)
	}
}
