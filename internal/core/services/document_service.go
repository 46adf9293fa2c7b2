package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
)

// documentService renders transfer receipts as PDFs with an embedded
// verification QR code.
type documentService struct {
	transferRepo portsrepo.TransferReader
}

// NewDocumentService creates a new document service.
func NewDocumentService(transferRepo portsrepo.TransferReader) portssvc.DocumentSvcFacade {
	return &documentService{transferRepo: transferRepo}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

func (s *documentService) GenerateTransferReceipt(ctx context.Context, transferID string) ([]byte, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer for receipt: %w", err)
	}
	return renderReceipt(transfer)
}

func renderReceipt(t *domain.Transfer) ([]byte, error) {
	qrPNG, err := qrcode.Encode(fmt.Sprintf("SWIFTSIM:%s", t.TransferID), qrcode.Medium, 128)
	if err != nil {
		return nil, fmt.Errorf("failed to render verification QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Wire Transfer Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "International Wire Transfer Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04:05 UTC")), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	field("Transfer ID", t.TransferID)
	field("Booked", t.Date.UTC().Format("2006-01-02 15:04:05 UTC"))
	field("Sender", fmt.Sprintf("%s (%s)", t.SenderName, t.SenderBIC))
	field("Receiver", fmt.Sprintf("%s (%s)", t.ReceiverName, t.ReceiverBIC))
	field("Message Type", string(t.TransferType))
	field("Amount", fmt.Sprintf("%s %s", t.Amount.StringFixed(2), t.Currency))
	field("Reference", t.Reference)
	field("Purpose", t.Purpose)
	field("Status", string(t.Status))
	field("Current Stage", t.CurrentStage)
	field("Risk Level", t.RiskLevel)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Pipeline Progress", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, sp := range t.Stages {
		ts := "-"
		if sp.Timestamp != nil {
			ts = sp.Timestamp.UTC().Format("15:04:05")
		}
		marker := "[ ]"
		if sp.Status == domain.StageStatusCompleted {
			marker = "[x]"
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("%s %-24s %-18s %s", marker, sp.StageName, sp.Location, ts), "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("receipt-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("receipt-qr", 160, 255, 30, 30, false, opts, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(160, 286)
	pdf.CellFormat(30, 4, "Scan to verify", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt PDF: %w", err)
	}
	return buf.Bytes(), nil
}
