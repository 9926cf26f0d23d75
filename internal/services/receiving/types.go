package receiving

import "github.com/workdesk/workdesk/internal/models"

// ReceiptInput contains data for posting a delivery document.
type ReceiptInput struct {
	Supplier       string
	DocumentNumber string
	Lines          []ReceiptLineInput
}

// ReceiptLineInput is one delivery line. Unit, Type and Attributes only
// matter when the line introduces a new resource to the catalog.
type ReceiptLineInput struct {
	ResourceName string
	Quantity     int
	Unit         string
	Type         models.ResourceType
	Attributes   map[string]string
}
