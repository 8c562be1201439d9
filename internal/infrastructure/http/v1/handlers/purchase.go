package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/documents/purchase"
)

// PurchaseHandler exposes purchase invoice endpoints.
type PurchaseHandler struct {
	service *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

type purchaseLinePayload struct {
	LineNo     int            `json:"lineNo" binding:"required"`
	ItemID     id.ID          `json:"itemId" binding:"required"`
	Quantity   types.Quantity `json:"quantity"`
	Rate       types.Money    `json:"rate"`
	CGSTAmount types.Money    `json:"cgstAmount"`
	SGSTAmount types.Money    `json:"sgstAmount"`
	IGSTAmount types.Money    `json:"igstAmount"`
}

type purchasePayload struct {
	FiscalYearID       id.ID                 `json:"fiscalYearId" binding:"required"`
	SupplierID         id.ID                 `json:"supplierId" binding:"required"`
	SupplierBillNumber string                `json:"supplierBillNumber"`
	Date               time.Time             `json:"date"`
	Rounding           types.Money           `json:"rounding"`
	Comment            string                `json:"comment"`
	Version            int                   `json:"version"`
	Lines              []purchaseLinePayload `json:"lines"`
}

func (p *purchasePayload) toModel() *purchase.Purchase {
	doc := purchase.New(p.FiscalYearID, p.SupplierID)
	doc.SupplierBillNumber = p.SupplierBillNumber
	if !p.Date.IsZero() {
		doc.Date = p.Date
	}
	doc.Rounding = p.Rounding
	doc.Comment = p.Comment
	doc.Lines = make([]purchase.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		doc.Lines = append(doc.Lines, purchase.Line{
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

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var payload purchasePayload
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

// Update handles PUT /purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	var payload purchasePayload
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

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
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

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("supplierId"); raw != "" {
		if parsed, err := id.Parse(raw); err == nil {
			filter.SupplierID = parsed
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

// SaveWithNumber handles POST /purchases/:id/save-number.
func (h *PurchaseHandler) SaveWithNumber(c *gin.Context) {
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

// ConfirmCosting handles POST /purchases/:id/confirm-costing.
func (h *PurchaseHandler) ConfirmCosting(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	var req purchase.ConfirmCostingRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.service.ConfirmCosting(c.Request.Context(), docID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, doc)
}

// Cancel handles POST /purchases/:id/cancel.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
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

// SetToDraft handles POST /purchases/:id/set-to-draft.
func (h *PurchaseHandler) SetToDraft(c *gin.Context) {
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

// Delete handles DELETE /purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
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
