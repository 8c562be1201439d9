package posting

import (
	"context"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/sequence"
	"ledgerpost/pkg/logger"
)

// Numberable is a document that carries an allocatable business number.
type Numberable interface {
	GetID() id.ID
	GetNumber() int64
	GetFiscalYearID() id.ID
	SetNumber(n int64)
}

// Engine provides the numbering step shared by all document services.
// It must be called inside the service's transaction so an aborted
// save consumes no number.
type Engine struct {
	allocator sequence.Allocator
}

// NewEngine creates a posting engine.
func NewEngine(allocator sequence.Allocator) *Engine {
	return &Engine{allocator: allocator}
}

// EnsureNumber allocates a business number on first numbered save.
// Already-numbered documents keep their number; numbers are never
// reallocated, not even after cancellation.
func (e *Engine) EnsureNumber(ctx context.Context, doc Numberable, docType string) error {
	if doc.GetNumber() > 0 {
		return nil
	}

	number, err := e.allocator.Next(ctx, sequence.Scope{
		DocType:      docType,
		FiscalYearID: doc.GetFiscalYearID(),
	})
	if err != nil {
		return err
	}

	doc.SetNumber(number)
	logger.Info(ctx, "document numbered",
		"document_id", doc.GetID(),
		"doc_type", docType,
		"number", number,
	)
	return nil
}
