package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Certificate holds the content of a provenance certificate document.
type Certificate struct {
	Title     string
	Fields    []CertificateField
	Timeline  []TimelineEntry
	Digest    string
	FooterMsg string
}

// CertificateField is a single labeled value on the certificate.
type CertificateField struct {
	Label string
	Value string
}

// TimelineEntry is one processing step row.
type TimelineEntry struct {
	Step        string
	Date        string
	Description string
}

// PDFExporter renders provenance certificates and tabular datasets.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderCertificate creates the provenance certificate PDF for a batch.
func (e *PDFExporter) RenderCertificate(cert Certificate) ([]byte, error) {
	if cert.Title == "" {
		return nil, fmt.Errorf("certificate requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(cert.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	for _, field := range cert.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 7, field.Label, "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, field.Value, "", 1, "", false, 0, "")
	}

	if len(cert.Timeline) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Processing Timeline", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(55, 7, "Step", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, "Date", "1", 0, "C", false, 0, "")
		pdf.CellFormat(95, 7, "Description", "1", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, entry := range cert.Timeline {
			pdf.CellFormat(55, 7, entry.Step, "1", 0, "", false, 0, "")
			pdf.CellFormat(30, 7, entry.Date, "1", 0, "C", false, 0, "")
			pdf.CellFormat(95, 7, entry.Description, "1", 1, "", false, 0, "")
		}
	}

	if cert.Digest != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Integrity Seal (SHA-256)", "", 1, "", false, 0, "")
		pdf.SetFont("Courier", "", 8)
		pdf.MultiCell(0, 5, cert.Digest, "1", "C", false)
	}

	if cert.FooterMsg != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 5, cert.FooterMsg, "", "C", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
