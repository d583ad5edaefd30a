package index

import (
	"time"

	"github.com/google/uuid"
)

// Document defines a web-page whose extracted text has been indexed.
type Document struct {
	// ID assigned by the store when the document is first written.
	// Callers may supply an ID to replace an existing document.
	ID uuid.UUID

	// URL pointing to the source of the document content.
	URL string

	// Title of the document or "untitled" when the page had none.
	Title string

	// Whitespace-joined body text of the document.
	Content string

	// Time the page content was extracted.
	RetrievedAt time.Time

	// Time the store accepted the write.
	IndexedAt time.Time
}

// UntitledPlaceholder is stored as the document title when extraction
// yields none.
const UntitledPlaceholder = "untitled"
