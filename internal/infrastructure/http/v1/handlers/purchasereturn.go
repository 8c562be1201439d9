package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/documents/purchasereturn"
)

// PurchaseReturnHandler exposes purchase return endpoints.
type PurchaseReturnHandler struct {
	service *purchasereturn.Service
}

// NewPurchaseReturnHandler creates a purchase return handler.
func NewPurchaseReturnHandler(service *purchasereturn.Service) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{service: service}
}

type purchaseReturnLinePayload struct {
	LineNo     int            `json:"lineNo" binding:"required"`
	ItemID     id.ID          `json:"itemId" binding:"required"`
	Quantity   types.Quantity `json:"quantity"`
	Rate       types.Money    `json:"rate"`
	CGSTAmount types.Money    `json:"cgstAmount"`
	SGSTAmount types.Money    `json:"sgstAmount"`
	IGSTAmount types.Money    `json:"igstAmount"`
}

type purchaseReturnPayload struct {
	FiscalYearID      id.ID                       `json:"fiscalYearId" binding:"required"`
	SupplierID        id.ID                       `json:"supplierId" binding:"required"`
	AgainstPurchaseID *id.ID                      `json:"againstPurchaseId"`
	Date              time.Time                   `json:"date"`
	Rounding          types.Money                 `json:"rounding"`
	Comment           string                      `json:"comment"`
	Version           int                         `json:"version"`
	Lines             []purchaseReturnLinePayload `json:"lines"`
}

func (p *purchaseReturnPayload) toModel() *purchasereturn.PurchaseReturn {
	doc := purchasereturn.New(p.FiscalYearID, p.SupplierID)
	doc.AgainstPurchaseID = p.AgainstPurchaseID
	if !p.Date.IsZero() {
		doc.Date = p.Date
	}
	doc.Rounding = p.Rounding
	doc.Comment = p.Comment
	doc.Lines = make([]purchasereturn.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		doc.Lines = append(doc.Lines, purchasereturn.Line{
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

// Create handles POST /purchase-returns.
func (h *PurchaseReturnHandler) Create(c *gin.Context) {
	var payload purchaseReturnPayload
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

// Update handles PUT /purchase-returns/:id.
func (h *PurchaseReturnHandler) Update(c *gin.Context) {
	docID, okID := pathID(c, "id")
	if !okID {
		return
	}
	var payload purchaseReturnPayload
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

// Get handles GET /purchase-returns/:id.
func (h *PurchaseReturnHandler) Get(c *gin.Context) {
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

// List handles GET /purchase-returns.
func (h *PurchaseReturnHandler) List(c *gin.Context) {
	filter := purchasereturn.ListFilter{
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

// SaveWithNumber handles POST /purchase-returns/:id/save-number.
func (h *PurchaseReturnHandler) SaveWithNumber(c *gin.Context) {
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

// Post handles POST /purchase-returns/:id/post.
func (h *PurchaseReturnHandler) Post(c *gin.Context) {
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

// Cancel handles POST /purchase-returns/:id/cancel.
func (h *PurchaseReturnHandler) Cancel(c *gin.Context) {
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

// SetToDraft handles POST /purchase-returns/:id/set-to-draft.
func (h *PurchaseReturnHandler) SetToDraft(c *gin.Context) {
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

// Delete handles DELETE /purchase-returns/:id.
func (h *PurchaseReturnHandler) Delete(c *gin.Context) {
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
