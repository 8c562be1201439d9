package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/domain/journal"
)

// JournalHandler exposes read access to journals and the account ledger.
type JournalHandler struct {
	repo journal.Repository
}

// NewJournalHandler creates a journal handler.
func NewJournalHandler(repo journal.Repository) *JournalHandler {
	return &JournalHandler{repo: repo}
}

// Get handles GET /journals/:id.
func (h *JournalHandler) Get(c *gin.Context) {
	journalID, okID := pathID(c, "id")
	if !okID {
		return
	}
	voucher, err := h.repo.GetByID(c.Request.Context(), journalID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, voucher)
}

// GetByDocument handles GET /journals/by-document/:id.
func (h *JournalHandler) GetByDocument(c *gin.Context) {
	documentID, okID := pathID(c, "id")
	if !okID {
		return
	}
	voucher, err := h.repo.GetByDocument(c.Request.Context(), documentID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, voucher)
}

// AccountLedger handles GET /accounts/:id/ledger.
func (h *JournalHandler) AccountLedger(c *gin.Context) {
	accountID, okID := pathID(c, "id")
	if !okID {
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = t
		}
	}

	entries, err := h.repo.GetAccountLedger(c.Request.Context(), accountID, from, to)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": entries, "count": len(entries)})
}
