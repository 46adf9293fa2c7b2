package services

import "context"

// DocumentSvcFacade renders transfer documents.
type DocumentSvcFacade interface {
	// GenerateTransferReceipt renders the PDF receipt for a transfer,
	// including a QR code carrying the transfer id.
	GenerateTransferReceipt(ctx context.Context, transferID string) ([]byte, error)
}
