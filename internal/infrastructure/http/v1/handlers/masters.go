package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/masters/item"
	"ledgerpost/internal/domain/masters/party"
	"ledgerpost/internal/domain/registers/stock"
)

// ItemHandler exposes item master endpoints plus the stock audit trail.
type ItemHandler struct {
	items *item.Service
	stock *stock.Service
}

// NewItemHandler creates an item handler.
func NewItemHandler(items *item.Service, stockService *stock.Service) *ItemHandler {
	return &ItemHandler{items: items, stock: stockService}
}

type itemPayload struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Unit    string `json:"unit"`
	HSNCode string `json:"hsnCode"`
	Version int    `json:"version"`
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	var payload itemPayload
	if !bindJSON(c, &payload) {
		return
	}

	it := item.NewItem(payload.Code, payload.Name, payload.Unit)
	it.HSNCode = payload.HSNCode
	if err := h.items.Create(c.Request.Context(), it); err != nil {
		fail(c, err)
		return
	}
	created(c, it)
}

// Update handles PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, okID := pathID(c, "id")
	if !okID {
		return
	}
	var payload itemPayload
	if !bindJSON(c, &payload) {
		return
	}

	it := item.NewItem(payload.Code, payload.Name, payload.Unit)
	it.ID = itemID
	it.Version = payload.Version
	it.HSNCode = payload.HSNCode
	if err := h.items.Update(c.Request.Context(), it); err != nil {
		fail(c, err)
		return
	}
	ok(c, it)
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, okID := pathID(c, "id")
	if !okID {
		return
	}
	it, err := h.items.GetByID(c.Request.Context(), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, it)
}

// List handles GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	filter := item.ListFilter{
		Search: c.Query("search"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	items, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items, "count": len(items)})
}

// Delete handles DELETE /items/:id.
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID, okID := pathID(c, "id")
	if !okID {
		return
	}
	if err := h.items.SetDeletionMark(c.Request.Context(), itemID, true); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// Movements handles GET /items/:id/movements.
func (h *ItemHandler) Movements(c *gin.Context) {
	itemID, okID := pathID(c, "id")
	if !okID {
		return
	}

	filter := stock.HistoryFilter{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = t
		}
	}

	movements, err := h.stock.GetHistory(c.Request.Context(), itemID, filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": movements, "count": len(movements)})
}

// Balance handles GET /items/:id/balance?at=<rfc3339>.
func (h *ItemHandler) Balance(c *gin.Context) {
	itemID, okID := pathID(c, "id")
	if !okID {
		return
	}

	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, apperror.NewValidation("invalid 'at' timestamp").WithCause(err))
			return
		}
		at = parsed
	}

	balance, err := h.stock.BalanceAt(c.Request.Context(), itemID, at)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"itemId": itemID, "at": at, "balance": balance})
}

// PartyHandler exposes party master endpoints.
type PartyHandler struct {
	parties *party.Service
}

// NewPartyHandler creates a party handler.
func NewPartyHandler(parties *party.Service) *PartyHandler {
	return &PartyHandler{parties: parties}
}

type partyPayload struct {
	Code      string     `json:"code" binding:"required"`
	Name      string     `json:"name" binding:"required"`
	Kind      party.Kind `json:"kind" binding:"required"`
	AccountID id.ID      `json:"accountId" binding:"required"`
	GSTIN     string     `json:"gstin"`
	Version   int        `json:"version"`
}

// Create handles POST /parties.
func (h *PartyHandler) Create(c *gin.Context) {
	var payload partyPayload
	if !bindJSON(c, &payload) {
		return
	}

	p := party.NewParty(payload.Code, payload.Name, payload.Kind, payload.AccountID)
	p.GSTIN = payload.GSTIN
	if err := h.parties.Create(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	created(c, p)
}

// Update handles PUT /parties/:id.
func (h *PartyHandler) Update(c *gin.Context) {
	partyID, okID := pathID(c, "id")
	if !okID {
		return
	}
	var payload partyPayload
	if !bindJSON(c, &payload) {
		return
	}

	p := party.NewParty(payload.Code, payload.Name, payload.Kind, payload.AccountID)
	p.ID = partyID
	p.Version = payload.Version
	p.GSTIN = payload.GSTIN
	if err := h.parties.Update(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

// Get handles GET /parties/:id.
func (h *PartyHandler) Get(c *gin.Context) {
	partyID, okID := pathID(c, "id")
	if !okID {
		return
	}
	p, err := h.parties.GetByID(c.Request.Context(), partyID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

// List handles GET /parties.
func (h *PartyHandler) List(c *gin.Context) {
	filter := party.ListFilter{
		Kind:   party.Kind(c.Query("kind")),
		Search: c.Query("search"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	parties, err := h.parties.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": parties, "count": len(parties)})
}

// Delete handles DELETE /parties/:id.
func (h *PartyHandler) Delete(c *gin.Context) {
	partyID, okID := pathID(c, "id")
	if !okID {
		return
	}
	if err := h.parties.SetDeletionMark(c.Request.Context(), partyID, true); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
