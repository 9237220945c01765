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

// transactionHandler handles HTTP requests for the transaction lifecycle:
// draft assembly, posting and reversal.
type transactionHandler struct {
	postingService portssvc.PostingSvcFacade
}

// newTransactionHandler creates a new transactionHandler
func newTransactionHandler(ps portssvc.PostingSvcFacade) *transactionHandler {
	return &transactionHandler{
		postingService: ps,
	}
}

// registerTransactionRoutes registers routes related to transactions within a company
func registerTransactionRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newTransactionHandler(postingService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transaction_id", h.getTransaction)
		transactions.POST("/:transaction_id/lines", h.addLine)
		transactions.PUT("/:transaction_id/lines/:line_id", h.updateLine)
		transactions.DELETE("/:transaction_id/lines/:line_id", h.removeLine)
		transactions.POST("/:transaction_id/post", h.postTransaction)
		transactions.POST("/:transaction_id/reverse", h.reverseTransaction)
	}
}

// respondTransactionError translates service errors into HTTP responses.
// Unbalanced posts carry both totals back to the caller so the defect in
// their line construction is visible from the response alone.
func respondTransactionError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	var unbalanced *apperrors.UnbalancedTransactionError
	if errors.As(err, &unbalanced) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Transaction does not balance",
			"debits":  unbalanced.Debits.StringFixed(2),
			"credits": unbalanced.Credits.StringFixed(2),
		})
		return
	}

	var hasAllocations *apperrors.HasDependentAllocationsError
	if errors.As(err, &hasAllocations) {
		c.JSON(http.StatusConflict, gin.H{
			"error":            "Transaction has dependent allocations and cannot be reversed",
			"transaction_id":   hasAllocations.TransactionID,
			"allocated_amount": hasAllocations.AllocatedAmount.StringFixed(2),
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}

// createTransaction godoc
// @Summary Create a draft transaction
// @Description Creates a new DRAFT transaction, optionally with initial lines
// @Tags transactions
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body for createTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.postingService.CreateTransaction(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to create transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists a company's transactions, newest first, with cursor pagination
// @Tags transactions
// @Produce json
// @Param company_id path string true "Company ID"
// @Param limit query int false "Max transactions to return" default(20)
// @Param next_token query string false "Cursor from previous page"
// @Param include_reversals query bool false "Include reversal transactions" default(true)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.postingService.ListTransactions(c.Request.Context(), companyID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("company_id", companyID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get transaction by ID
// @Description Retrieves a transaction with its lines
// @Tags transactions
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	txn, err := h.postingService.GetTransactionByID(c.Request.Context(), companyID, transactionID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// addLine godoc
// @Summary Add a line to a draft
// @Description Appends a debit or credit line to a DRAFT transaction owned by the caller
// @Tags transactions
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Param line body dto.CreateLineRequest true "Line details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Draft owned by another user"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not a draft"
// @Failure 500 {object} map[string]string "Failed to add line"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/lines [post]
func (h *transactionHandler) addLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	var req dto.CreateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.postingService.AddLine(c.Request.Context(), companyID, transactionID, req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to add line")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// updateLine godoc
// @Summary Update a line on a draft
// @Description Replaces an existing line on a DRAFT transaction owned by the caller
// @Tags transactions
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Param line_id path string true "Line ID"
// @Param line body dto.CreateLineRequest true "New line details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Draft owned by another user"
// @Failure 404 {object} map[string]string "Transaction or line not found"
// @Failure 409 {object} map[string]string "Transaction is not a draft"
// @Failure 500 {object} map[string]string "Failed to update line"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/lines/{line_id} [put]
func (h *transactionHandler) updateLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")
	lineID := c.Param("line_id")

	var req dto.CreateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.postingService.UpdateLine(c.Request.Context(), companyID, transactionID, lineID, req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to update line")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// removeLine godoc
// @Summary Remove a line from a draft
// @Description Removes a line from a DRAFT transaction owned by the caller
// @Tags transactions
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Param line_id path string true "Line ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Draft owned by another user"
// @Failure 404 {object} map[string]string "Transaction or line not found"
// @Failure 409 {object} map[string]string "Transaction is not a draft"
// @Failure 500 {object} map[string]string "Failed to remove line"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/lines/{line_id} [delete]
func (h *transactionHandler) removeLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")
	lineID := c.Param("line_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.postingService.RemoveLine(c.Request.Context(), companyID, transactionID, lineID, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to remove line")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// postTransaction godoc
// @Summary Post a draft transaction
// @Description Validates the balance invariant and atomically converts the draft into immutable ledger entries
// @Tags transactions
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not a draft or was modified concurrently"
// @Failure 422 {object} map[string]string "Transaction does not balance"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/post [post]
func (h *transactionHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.postingService.Post(c.Request.Context(), companyID, transactionID, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to post transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// reverseTransaction godoc
// @Summary Reverse a posted transaction
// @Description Voids a POSTED transaction by posting an equal-and-opposite reversal dated at the reversal date
// @Tags transactions
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Param reversal body dto.ReverseTransactionRequest true "Reversal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not reversible or has dependent allocations"
// @Failure 500 {object} map[string]string "Failed to reverse transaction"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.postingService.Reverse(c.Request.Context(), companyID, transactionID, req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to reverse transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}
