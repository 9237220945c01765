package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/dto"
)

var (
	ErrTransactionMinLines    = fmt.Errorf("%w: transaction must have at least two lines", apperrors.ErrValidation)
	ErrTransactionMinAccounts = fmt.Errorf("%w: transaction must affect at least two different accounts", apperrors.ErrValidation)
	ErrAccountNotFound        = fmt.Errorf("%w: line references an unknown account", apperrors.ErrValidation)
	ErrAccountInactive        = fmt.Errorf("%w: line references an inactive account", apperrors.ErrValidation)
)

// postingService provides draft assembly, posting and reversal. This is the
// only writer of ledger entries in the system.
type postingService struct {
	BaseService
	accountSvc      portssvc.AccountSvcFacade
	transactionRepo portsrepo.TransactionRepositoryWithTx
	allocationRepo  portsrepo.AllocationReader
	auditLogger     portssvc.AuditLogger
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithAllocationReader adds the allocation reader used to block reversal of
// transactions that still have payments applied against them.
func WithAllocationReader(repo portsrepo.AllocationReader) PostingServiceOption {
	return func(s *postingService) {
		s.allocationRepo = repo
	}
}

// WithPostingAuditLogger adds the audit logger invoked after successful posts
// and reversals.
func WithPostingAuditLogger(logger portssvc.AuditLogger) PostingServiceOption {
	return func(s *postingService) {
		s.auditLogger = logger
	}
}

// NewPostingService creates a new posting service.
func NewPostingService(transactionRepo portsrepo.TransactionRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, options ...PostingServiceOption) portssvc.PostingSvcFacade {
	svc := &postingService{
		accountSvc:      accountSvc,
		transactionRepo: transactionRepo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure postingService implements the portssvc.PostingSvcFacade interface
var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func lineFromRequest(req dto.CreateLineRequest) domain.TransactionLine {
	return domain.TransactionLine{
		LineID:       uuid.NewString(),
		AccountID:    req.AccountID,
		Amount:       req.Amount,
		Direction:    domain.EntryDirection(req.Direction),
		TaxCode:      req.TaxCode,
		DepartmentID: req.DepartmentID,
		Memo:         req.Memo,
	}
}

// CreateTransaction creates a new DRAFT transaction, optionally with initial
// lines. No balance check happens here; drafts are legitimately unbalanced
// while being assembled.
func (s *postingService) CreateTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	txnType := domain.TransactionType(req.Type)
	switch txnType {
	case domain.Journal, domain.Payment, domain.Receipt, domain.Transfer:
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, req.Type)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		CompanyID:     companyID,
		Type:          txnType,
		Date:          req.Date,
		Description:   req.Description,
		Reference:     req.Reference,
		Status:        domain.Draft,
		Version:       1,
		AuditFields:   domain.NewAuditFields(creatorUserID, now),
	}

	for _, lineReq := range req.Lines {
		if err := txn.AddLine(lineFromRequest(lineReq)); err != nil {
			return nil, err
		}
	}

	if len(txn.Lines) > 0 {
		if err := s.validateLineAccounts(ctx, companyID, txn.Lines); err != nil {
			return nil, err
		}
	}

	if err := s.transactionRepo.SaveDraft(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save draft transaction", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.LogInfo(ctx, "Draft transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("company_id", companyID),
		slog.Int("line_count", len(txn.Lines)))
	return &txn, nil
}

// GetTransactionByID retrieves a transaction with its lines.
func (s *postingService) GetTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if txn.CompanyID != companyID {
		// Obscure existence across company boundaries.
		s.LogWarn(ctx, "Transaction belongs to a different company",
			slog.String("transaction_id", transactionID),
			slog.String("transaction_company", txn.CompanyID),
			slog.String("requested_company", companyID))
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

// getDraftForUpdate fetches a transaction and verifies it is a draft owned by
// the acting user.
func (s *postingService) getDraftForUpdate(ctx context.Context, companyID, transactionID, actingUserID string) (*domain.Transaction, error) {
	txn, err := s.GetTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Draft {
		return nil, fmt.Errorf("%w: transaction %s is %s, lines are mutable only while DRAFT",
			apperrors.ErrInvalidState, transactionID, txn.Status)
	}
	if txn.CreatedBy != actingUserID {
		s.LogWarn(ctx, "Draft mutation attempted by non-owner",
			slog.String("transaction_id", transactionID),
			slog.String("owner", txn.CreatedBy),
			slog.String("acting_user", actingUserID))
		return nil, fmt.Errorf("%w: draft %s belongs to another user", apperrors.ErrForbidden, transactionID)
	}
	return txn, nil
}

// AddLine appends a line to a draft owned by the acting user.
func (s *postingService) AddLine(ctx context.Context, companyID string, transactionID string, req dto.CreateLineRequest, actingUserID string) (*domain.Transaction, error) {
	txn, err := s.getDraftForUpdate(ctx, companyID, transactionID, actingUserID)
	if err != nil {
		return nil, err
	}

	line := lineFromRequest(req)
	if err := s.validateLineAccounts(ctx, companyID, []domain.TransactionLine{line}); err != nil {
		return nil, err
	}
	if err := txn.AddLine(line); err != nil {
		return nil, err
	}

	txn.Touch(actingUserID, time.Now().UTC())
	if err := s.transactionRepo.UpdateDraft(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update draft with new line", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	txn.Version++

	s.LogDebug(ctx, "Line added to draft",
		slog.String("transaction_id", transactionID),
		slog.String("line_id", line.LineID))
	return txn, nil
}

// UpdateLine replaces an existing line on a draft owned by the acting user.
func (s *postingService) UpdateLine(ctx context.Context, companyID string, transactionID string, lineID string, req dto.CreateLineRequest, actingUserID string) (*domain.Transaction, error) {
	txn, err := s.getDraftForUpdate(ctx, companyID, transactionID, actingUserID)
	if err != nil {
		return nil, err
	}

	line := lineFromRequest(req)
	line.LineID = lineID
	if err := s.validateLineAccounts(ctx, companyID, []domain.TransactionLine{line}); err != nil {
		return nil, err
	}
	if err := txn.UpdateLine(line); err != nil {
		return nil, err
	}

	txn.Touch(actingUserID, time.Now().UTC())
	if err := s.transactionRepo.UpdateDraft(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update draft line", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	txn.Version++

	s.LogDebug(ctx, "Line updated on draft",
		slog.String("transaction_id", transactionID),
		slog.String("line_id", lineID))
	return txn, nil
}

// RemoveLine removes a line from a draft owned by the acting user.
func (s *postingService) RemoveLine(ctx context.Context, companyID string, transactionID string, lineID string, actingUserID string) (*domain.Transaction, error) {
	txn, err := s.getDraftForUpdate(ctx, companyID, transactionID, actingUserID)
	if err != nil {
		return nil, err
	}

	if err := txn.RemoveLine(lineID); err != nil {
		return nil, err
	}

	txn.Touch(actingUserID, time.Now().UTC())
	if err := s.transactionRepo.UpdateDraft(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update draft after line removal", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	txn.Version++

	s.LogDebug(ctx, "Line removed from draft",
		slog.String("transaction_id", transactionID),
		slog.String("line_id", lineID))
	return txn, nil
}

// ListTransactions retrieves a paginated list of a company's transactions.
func (s *postingService) ListTransactions(ctx context.Context, companyID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	transactions, newToken, err := s.transactionRepo.ListTransactionsByCompany(ctx, companyID, limit, nextToken, params.IncludeReversals)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(transactions)),
	}
	for i := range transactions {
		resp.Transactions[i] = dto.ToTransactionResponse(&transactions[i])
	}
	if newToken != nil {
		resp.NextToken = *newToken
	}

	s.LogDebug(ctx, "Transactions listed", slog.Int("count", len(transactions)))
	return resp, nil
}

// validateLineAccounts fetches the referenced accounts and rejects lines
// pointing at missing, foreign or inactive accounts.
func (s *postingService) validateLineAccounts(ctx context.Context, companyID string, lines []domain.TransactionLine) error {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		accountIDs = append(accountIDs, line.AccountID)
	}

	accountsMap, err := s.accountSvc.GetAccountByIDs(ctx, companyID, accountIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrAccountNotFound, err)
		}
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range accountIDs {
		acc := accountsMap[id]
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s", ErrAccountInactive, id)
		}
	}
	return nil
}

// validatePostable runs every check that must pass before a draft becomes
// ledger entries. A failed balance check surfaces both totals; the caller
// built the lines and needs to see how far off they are.
func (s *postingService) validatePostable(ctx context.Context, txn *domain.Transaction) error {
	if len(txn.Lines) < 2 {
		return ErrTransactionMinLines
	}

	accountSet := make(map[string]struct{})
	for _, line := range txn.Lines {
		accountSet[line.AccountID] = struct{}{}
	}
	if len(accountSet) < 2 {
		return ErrTransactionMinAccounts
	}

	if err := s.validateLineAccounts(ctx, txn.CompanyID, txn.Lines); err != nil {
		return err
	}

	debits := txn.DebitTotal()
	credits := txn.CreditTotal()
	if !debits.Equal(credits) {
		return &apperrors.UnbalancedTransactionError{Debits: debits, Credits: credits}
	}
	return nil
}

// recordAuditEvent writes an audit trail record after a successful commit. A
// failure here is logged and swallowed; the ledger entries are already
// durable and must not appear to fail.
func (s *postingService) recordAuditEvent(ctx context.Context, event domain.AuditEvent) {
	if s.auditLogger == nil {
		return
	}
	if err := s.auditLogger.RecordEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to record audit event",
			slog.String("kind", string(event.Kind)),
			slog.String("transaction_id", event.TransactionID))
	}
}

// Post validates the balance invariant and atomically converts the draft into
// immutable ledger entries.
func (s *postingService) Post(ctx context.Context, companyID string, transactionID string, actingUserID string) (*domain.Transaction, error) {
	txn, err := s.GetTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status != domain.Draft {
		return nil, fmt.Errorf("%w: transaction %s is %s, only DRAFT transactions can be posted",
			apperrors.ErrInvalidState, transactionID, txn.Status)
	}

	if err := s.validatePostable(ctx, txn); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]domain.LedgerEntry, len(txn.Lines))
	for i, line := range txn.Lines {
		entry := domain.EntryFromLine(txn, line, actingUserID, now)
		entry.EntryID = uuid.NewString()
		entries[i] = entry
	}

	// Touch before the write so the posted row records the posting user, not
	// the draft's last editor.
	txn.Touch(actingUserID, now)
	if err := s.transactionRepo.PostTransaction(ctx, *txn, entries, now); err != nil {
		s.LogError(ctx, err, "Failed to post transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to post transaction: %w", err)
	}

	txn.Status = domain.Posted
	txn.Version++

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", transactionID),
		slog.String("company_id", companyID),
		slog.Int("entry_count", len(entries)),
		slog.String("debit_total", txn.DebitTotal().StringFixed(2)))

	s.recordAuditEvent(ctx, domain.AuditEvent{
		EventID:       uuid.NewString(),
		CompanyID:     companyID,
		Kind:          domain.EventTransactionPosted,
		TransactionID: transactionID,
		ActorID:       actingUserID,
		OccurredAt:    now,
	})

	return txn, nil
}

// validateReversible fetches the original transaction and checks every
// precondition for reversal.
func (s *postingService) validateReversible(ctx context.Context, companyID, transactionID string) (*domain.Transaction, error) {
	original, err := s.GetTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}

	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: transaction %s is %s, only POSTED transactions can be reversed",
			apperrors.ErrInvalidState, transactionID, original.Status)
	}
	if original.ReversedByID != nil {
		return nil, fmt.Errorf("%w: transaction %s was already reversed by %s",
			apperrors.ErrInvalidState, transactionID, *original.ReversedByID)
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: transaction %s is itself a reversal", apperrors.ErrInvalidState, transactionID)
	}

	if s.allocationRepo != nil {
		allocated, err := s.allocationRepo.SumAllocationsForTransaction(ctx, transactionID)
		if err != nil {
			s.LogError(ctx, err, "Failed to sum allocations for reversal check", slog.String("transaction_id", transactionID))
			return nil, fmt.Errorf("failed to check allocations: %w", err)
		}
		if allocated.GreaterThan(decimal.Zero) {
			return nil, &apperrors.HasDependentAllocationsError{
				TransactionID:   transactionID,
				AllocatedAmount: allocated,
			}
		}
	}

	return original, nil
}

// Reverse voids a posted transaction by posting an equal-and-opposite
// transaction dated at the caller-supplied reversal date. The original's
// entries stay in the ledger untouched; history is corrected, never erased.
func (s *postingService) Reverse(ctx context.Context, companyID string, transactionID string, req dto.ReverseTransactionRequest, actingUserID string) (*domain.Transaction, error) {
	original, err := s.validateReversible(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	description := fmt.Sprintf("Reversal of: %s", original.Description)
	if req.Reason != "" {
		description = fmt.Sprintf("%s (%s)", description, req.Reason)
	}

	reversal := domain.Transaction{
		TransactionID: reversalID,
		CompanyID:     companyID,
		Type:          original.Type,
		Date:          req.Date,
		Description:   description,
		Reference:     original.Reference,
		Status:        domain.Posted,
		ReversalOfID:  &original.TransactionID,
		Version:       1,
		AuditFields:   domain.NewAuditFields(actingUserID, now),
	}

	// Mirror every line with the opposite direction at the same amount.
	reversal.Lines = make([]domain.TransactionLine, len(original.Lines))
	for i, line := range original.Lines {
		reversal.Lines[i] = domain.TransactionLine{
			LineID:        uuid.NewString(),
			TransactionID: reversalID,
			AccountID:     line.AccountID,
			Amount:        line.Amount,
			Direction:     line.Direction.Opposite(),
			TaxCode:       line.TaxCode,
			DepartmentID:  line.DepartmentID,
			Memo:          line.Memo,
		}
	}

	// The mirror passes through the same gate as any other posting, so a
	// single validation path covers both.
	if err := s.validatePostable(ctx, &reversal); err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, len(reversal.Lines))
	for i, line := range reversal.Lines {
		entry := domain.EntryFromLine(&reversal, line, actingUserID, now)
		entry.EntryID = uuid.NewString()
		entries[i] = entry
	}

	if err := s.transactionRepo.PostReversal(ctx, *original, reversal, entries, now); err != nil {
		s.LogError(ctx, err, "Failed to post reversal",
			slog.String("original_id", transactionID),
			slog.String("reversal_id", reversalID))
		return nil, fmt.Errorf("failed to post reversal: %w", err)
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("original_id", transactionID),
		slog.String("reversal_id", reversalID),
		slog.String("company_id", companyID))

	s.recordAuditEvent(ctx, domain.AuditEvent{
		EventID:       uuid.NewString(),
		CompanyID:     companyID,
		Kind:          domain.EventTransactionReversed,
		TransactionID: transactionID,
		ActorID:       actingUserID,
		Details:       fmt.Sprintf("reversed by %s", reversalID),
		OccurredAt:    now,
	})

	return &reversal, nil
}
