package domain

import "time"

// DocumentRef identifies a logical document. A document has no row of its
// own: it is the set of chunk rows sharing (tenant, agent, document name).
type DocumentRef struct {
	TenantID     string
	AgentID      string // empty = tenant-global
	DocumentName string
}

// DocumentInfo summarizes an ingested document, aggregated from its chunks.
type DocumentInfo struct {
	TenantID     string
	AgentID      string
	DocumentName string
	ContentType  string
	ChunkCount   int
	TotalChars   int
	IngestedAt   time.Time
}

// ValidateDocumentRef validates a DocumentRef.
func ValidateDocumentRef(ref DocumentRef) error {
	if ref.TenantID == "" {
		return ErrEmptyTenant
	}
	if ref.DocumentName == "" {
		return ErrEmptyDocumentName
	}
	return nil
}
