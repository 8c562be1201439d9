package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/documents/salesinvoice"
)

// SalesInvoiceHandler exposes sales invoice endpoints.
type SalesInvoiceHandler struct {
	service *salesinvoice.Service
}

// NewSalesInvoiceHandler creates a sales invoice handler.
func NewSalesInvoiceHandler(service *salesinvoice.Service) *SalesInvoiceHandler {
	return &SalesInvoiceHandler{service: service}
}

type salesLinePayload struct {
	LineNo     int            `json:"lineNo" binding:"required"`
	ItemID     id.ID          `json:"itemId" binding:"required"`
	Quantity   types.Quantity `json:"quantity"`
	Rate       types.Money    `json:"rate"`
	CGSTAmount types.Money    `json:"cgstAmount"`
	SGSTAmount types.Money    `json:"sgstAmount"`
	IGSTAmount types.Money    `json:"igstAmount"`
}

type salesInvoicePayload struct {
	FiscalYearID id.ID              `json:"fiscalYearId" binding:"required"`
	CustomerID   id.ID              `json:"customerId" binding:"required"`
	Date         time.Time          `json:"date"`
	Rounding     types.Money        `json:"rounding"`
	Comment      string             `json:"comment"`
	Version      int                `json:"version"`
	Lines        []salesLinePayload `json:"lines"`
}

func (p *salesInvoicePayload) toModel() *salesinvoice.SalesInvoice {
	doc := salesinvoice.New(p.FiscalYearID, p.CustomerID)
	if !p.Date.IsZero() {
		doc.Date = p.Date
	}
	doc.Rounding = p.Rounding
	doc.Comment = p.Comment
	doc.Lines = make([]salesinvoice.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		doc.Lines = append(doc.Lines, salesinvoice.Line{
			LineNo:     l.LineNo,
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			Rate:       l.Rate,
			CGSTAmount: l.CGSTAmount,
			SGSTAmount: l.SGSTAmount,
			IGSTAmount: l.IGSTAmount,
		})
	}
	return doc
}

// Create handles POST /sales-invoices.
func (h *SalesInvoiceHandler) Create(c *gin.Context) {
	var payload salesInvoicePayload
	if !bindJSON(c, &payload) {
		return
	}

	doc := payload.toModel()
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		fail(c, err)
		return
	}
	created(c, doc)
}

// Update handles PUT /sales-invoices/:id.
func (h *SalesInvoiceHandler) Update(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	var payload salesInvoicePayload
	if !bindJSON(c, &payload) {
		return
	}

	doc := payload.toModel()
	doc.ID = docID
	doc.Version = payload.Version
	if err := h.service.Update(c.Request.Context(), doc); err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

// Get handles GET /sales-invoices/:id.
func (h *SalesInvoiceHandler) Get(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

// List handles GET /sales-invoices.
func (h *SalesInvoiceHandler) List(c *gin.Context) {
	filter := salesinvoice.ListFilter{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("customerId"); raw != "" {
		if parsed, err := id.Parse(raw); err == nil {
			filter.CustomerID = parsed
		}
	}
	if raw := c.Query("fiscalYearId"); raw != "" {
		if parsed, err := id.Parse(raw); err == nil {
			filter.FiscalYearID = parsed
		}
	}

	docs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": docs, "count": len(docs)})
}

// SaveWithNumber handles POST /sales-invoices/:id/save-number.
func (h *SalesInvoiceHandler) SaveWithNumber(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	doc, err := h.service.SaveWithNumber(c.Request.Context(), docID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

// Post handles POST /sales-invoices/:id/post.
func (h *SalesInvoiceHandler) Post(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	doc, err := h.service.Post(c.Request.Context(), docID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

// Cancel handles POST /sales-invoices/:id/cancel.
func (h *SalesInvoiceHandler) Cancel(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), docID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// SetToDraft handles POST /sales-invoices/:id/set-to-draft.
func (h *SalesInvoiceHandler) SetToDraft(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	if err := h.service.SetToDraft(c.Request.Context(), docID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// Delete handles DELETE /sales-invoices/:id.
func (h *SalesInvoiceHandler) Delete(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
