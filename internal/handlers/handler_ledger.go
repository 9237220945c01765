package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/dto"
	"github.com/finbooks/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests over posted ledger entries
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers routes for reading and reconciling ledger entries
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/accounts/:account_id/entries", h.listAccountEntries)
		ledger.GET("/transactions/:transaction_id/entries", h.listTransactionEntries)
		ledger.POST("/entries/:entry_id/reconcile", h.markReconciled)
		ledger.POST("/entries/:entry_id/unreconcile", h.unreconcile)
	}
}

// listAccountEntries godoc
// @Summary List ledger entries for an account
// @Description Returns an account's posted entries within an inclusive date range, in posting-date-then-sequence order
// @Tags ledger
// @Produce json
// @Param company_id path string true "Company ID"
// @Param account_id path string true "Account ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param department_id query string false "Filter by department"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /companies/{company_id}/ledger/accounts/{account_id}/entries [get]
func (h *ledgerHandler) listAccountEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	accountID := c.Param("account_id")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.ledgerService.EntriesInRange(c.Request.Context(), companyID, accountID, params.From, params.To, params.DepartmentID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to list account entries", slog.String("account_id", accountID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListEntriesResponse(entries))
}

// listTransactionEntries godoc
// @Summary List ledger entries for a transaction
// @Description Returns the immutable entries posted by one transaction
// @Tags ledger
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /companies/{company_id}/ledger/transactions/{transaction_id}/entries [get]
func (h *ledgerHandler) listTransactionEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	entries, err := h.ledgerService.EntriesForTransaction(c.Request.Context(), companyID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		logger.Error("Failed to list transaction entries", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListEntriesResponse(entries))
}

// markReconciled godoc
// @Summary Mark a ledger entry reconciled
// @Description Flags an entry as matched to a bank feed item; repeating the same match is a no-op
// @Tags ledger
// @Accept json
// @Param company_id path string true "Company ID"
// @Param entry_id path string true "Ledger entry ID"
// @Param reconciliation body dto.MarkReconciledRequest true "Bank feed item"
// @Success 204 "Entry reconciled"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reconciled to a different item"
// @Failure 500 {object} map[string]string "Failed to reconcile entry"
// @Security BearerAuth
// @Router /companies/{company_id}/ledger/entries/{entry_id}/reconcile [post]
func (h *ledgerHandler) markReconciled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	entryID := c.Param("entry_id")

	var req dto.MarkReconciledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.ledgerService.MarkReconciled(c.Request.Context(), companyID, entryID, req.BankItemID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reconcile entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile entry"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// unreconcile godoc
// @Summary Clear a ledger entry's reconciliation
// @Description Clears the reconciliation flag; a no-op when the entry is not reconciled
// @Tags ledger
// @Param company_id path string true "Company ID"
// @Param entry_id path string true "Ledger entry ID"
// @Success 204 "Reconciliation cleared"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to unreconcile entry"
// @Security BearerAuth
// @Router /companies/{company_id}/ledger/entries/{entry_id}/unreconcile [post]
func (h *ledgerHandler) unreconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.Unreconcile(c.Request.Context(), companyID, entryID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		logger.Error("Failed to unreconcile entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unreconcile entry"})
		return
	}

	c.Status(http.StatusNoContent)
}
