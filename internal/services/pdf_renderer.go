package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var (
	boldMarkupRegex   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicMarkupRegex = regexp.MustCompile(`\*(.+?)\*`)
	orderedItemRegex  = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
)

// PDFRenderer turns the markdown documents the model produces into a printable
// A4 PDF. It understands the subset of markdown the generation prompts ask
// for: #/##/### headings, horizontal rules, unordered and ordered lists, and
// bold/italic emphasis.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for a document. The footer carries the
// document title and both partner names on every page.
func (renderer *PDFRenderer) Render(title string, markdown string, partnerAName string, partnerBName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	footer := fmt.Sprintf("%s - %s & %s", title, partnerAName, partnerBName)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, translate(footer), "", 0, "C", false, 0, "")
	})
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	for _, line := range strings.Split(markdown, "\n") {
		renderer.renderLine(pdf, translate, strings.TrimRight(line, " \t"))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (renderer *PDFRenderer) renderLine(pdf *gofpdf.Fpdf, translate func(string) string, line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		pdf.Ln(3)
	case trimmed == "---":
		pdf.Ln(2)
		left, _, right, _ := pdf.GetMargins()
		pageWidth, _ := pdf.GetPageSize()
		y := pdf.GetY()
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(left, y, pageWidth-right, y)
		pdf.Ln(4)
	case strings.HasPrefix(trimmed, "### "):
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 6, translate(stripEmphasis(strings.TrimPrefix(trimmed, "### "))), "", "L", false)
		pdf.Ln(1)
	case strings.HasPrefix(trimmed, "## "):
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(0, 7, translate(stripEmphasis(strings.TrimPrefix(trimmed, "## "))), "", "L", false)
		pdf.Ln(1)
	case strings.HasPrefix(trimmed, "# "):
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(20, 20, 20)
		pdf.MultiCell(0, 9, translate(stripEmphasis(strings.TrimPrefix(trimmed, "# "))), "", "L", false)
		pdf.Ln(2)
	case strings.HasPrefix(trimmed, "- "):
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		renderListItem(pdf, translate, "\x95", strings.TrimPrefix(trimmed, "- "))
	case orderedItemRegex.MatchString(trimmed):
		match := orderedItemRegex.FindStringSubmatch(trimmed)
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		renderListItem(pdf, translate, match[1]+".", match[2])
	default:
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 5.5, translate(stripEmphasis(trimmed)), "", "L", false)
	}
}

func renderListItem(pdf *gofpdf.Fpdf, translate func(string) string, bullet string, text string) {
	left, _, _, _ := pdf.GetMargins()
	pdf.SetX(left + 4)
	pdf.CellFormat(6, 5.5, bullet, "", 0, "L", false, 0, "")
	pdf.MultiCell(0, 5.5, translate(stripEmphasis(text)), "", "L", false)
}

// stripEmphasis removes bold and italic markers, keeping the inner text.
func stripEmphasis(text string) string {
	text = boldMarkupRegex.ReplaceAllString(text, "$1")
	return italicMarkupRegex.ReplaceAllString(text, "$1")
}
