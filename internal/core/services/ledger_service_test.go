package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/core/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) EntriesInRange(ctx context.Context, companyID, accountID string, from, to time.Time, departmentID *string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, companyID, accountID, from, to, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumEntriesAsOf(ctx context.Context, companyID, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, companyID, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerRepository) HasEntriesForAccount(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) AppendEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SetReconciliation(ctx context.Context, entryID string, status domain.ReconciliationStatus, bankItemID string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, status, bankItemID, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountSvc  *MockAccountService
	mockAuditLogger *MockAuditLogger
	service         portssvc.LedgerSvcFacade
	bankAccount     domain.Account
	salesAccount    domain.Account
	companyID       string
	userID          string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockAuditLogger = new(MockAuditLogger)
	suite.service = services.NewLedgerService(
		suite.mockLedgerRepo,
		suite.mockAccountSvc,
		services.WithLedgerAuditLogger(suite.mockAuditLogger),
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.bankAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Code:        "1200",
		AccountType: domain.Asset,
		IsActive:    true,
	}
	suite.salesAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Code:        "4000",
		AccountType: domain.Income,
		IsActive:    true,
	}
}

func (suite *LedgerServiceTestSuite) entry(accountID string) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		Sequence:    1,
		CompanyID:   suite.companyID,
		AccountID:   accountID,
		Debit:       decimal.RequireFromString("100.00"),
		Credit:      decimal.Zero,
		PostingDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		ReconStatus: domain.Unreconciled,
	}
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestBalanceAsOf_NoEntries() {
	ctx := context.Background()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	suite.mockAccountSvc.On("GetAccountByID", ctx, suite.companyID, suite.bankAccount.AccountID).
		Return(&suite.bankAccount, nil).Once()
	suite.mockLedgerRepo.On("SumEntriesAsOf", ctx, suite.companyID, suite.bankAccount.AccountID, asOf).
		Return(decimal.Zero, decimal.Zero, nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, suite.companyID, suite.bankAccount.AccountID, asOf)

	suite.Require().NoError(err)
	suite.True(balance.IsZero())
}

func (suite *LedgerServiceTestSuite) TestBalanceAsOf_AssetDebitPositive() {
	ctx := context.Background()
	asOf := time.Now()

	suite.mockAccountSvc.On("GetAccountByID", ctx, suite.companyID, suite.bankAccount.AccountID).
		Return(&suite.bankAccount, nil).Once()
	suite.mockLedgerRepo.On("SumEntriesAsOf", ctx, suite.companyID, suite.bankAccount.AccountID, asOf).
		Return(decimal.RequireFromString("150.00"), decimal.RequireFromString("50.00"), nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, suite.companyID, suite.bankAccount.AccountID, asOf)

	suite.Require().NoError(err)
	suite.Equal("100.00", balance.StringFixed(2))
}

func (suite *LedgerServiceTestSuite) TestBalanceAsOf_IncomeCreditPositive() {
	ctx := context.Background()
	asOf := time.Now()

	suite.mockAccountSvc.On("GetAccountByID", ctx, suite.companyID, suite.salesAccount.AccountID).
		Return(&suite.salesAccount, nil).Once()
	suite.mockLedgerRepo.On("SumEntriesAsOf", ctx, suite.companyID, suite.salesAccount.AccountID, asOf).
		Return(decimal.Zero, decimal.RequireFromString("200.00"), nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, suite.companyID, suite.salesAccount.AccountID, asOf)

	suite.Require().NoError(err)
	suite.Equal("200.00", balance.StringFixed(2))
}

func (suite *LedgerServiceTestSuite) TestBalanceAsOf_AccountNotFound() {
	ctx := context.Background()
	unknownID := uuid.NewString()

	suite.mockAccountSvc.On("GetAccountByID", ctx, suite.companyID, unknownID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.BalanceAsOf(ctx, suite.companyID, unknownID, time.Now())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SumEntriesAsOf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestEntriesInRange_InvertedRange() {
	ctx := context.Background()
	from := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	entries, err := suite.service.EntriesInRange(ctx, suite.companyID, suite.bankAccount.AccountID, from, to, nil)

	suite.Require().Error(err)
	suite.Nil(entries)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestEntriesForTransaction_OtherCompany() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	foreign := *suite.entry(suite.bankAccount.AccountID)
	foreign.CompanyID = uuid.NewString()

	suite.mockLedgerRepo.On("FindEntriesByTransactionID", ctx, transactionID).
		Return([]domain.LedgerEntry{foreign}, nil).Once()

	entries, err := suite.service.EntriesForTransaction(ctx, suite.companyID, transactionID)

	suite.Require().Error(err)
	suite.Nil(entries)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestMarkReconciled_Success() {
	ctx := context.Background()
	entry := suite.entry(suite.bankAccount.AccountID)
	bankItemID := "stmt-2025-03-0042"

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SetReconciliation", ctx, entry.EntryID, domain.Reconciled, bankItemID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAuditLogger.On("RecordEvent", ctx, mock.AnythingOfType("domain.AuditEvent")).Return(nil).Once()

	err := suite.service.MarkReconciled(ctx, suite.companyID, entry.EntryID, bankItemID, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAuditLogger.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestMarkReconciled_SameItemIsNoOp() {
	ctx := context.Background()
	entry := suite.entry(suite.bankAccount.AccountID)
	entry.ReconStatus = domain.Reconciled
	entry.MatchedBankItemID = "stmt-2025-03-0042"

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	err := suite.service.MarkReconciled(ctx, suite.companyID, entry.EntryID, entry.MatchedBankItemID, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SetReconciliation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAuditLogger.AssertNotCalled(suite.T(), "RecordEvent", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestMarkReconciled_DifferentItemConflicts() {
	ctx := context.Background()
	entry := suite.entry(suite.bankAccount.AccountID)
	entry.ReconStatus = domain.Reconciled
	entry.MatchedBankItemID = "stmt-2025-03-0042"

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	err := suite.service.MarkReconciled(ctx, suite.companyID, entry.EntryID, "stmt-2025-03-0099", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *LedgerServiceTestSuite) TestMarkReconciled_ConcurrentWriteConflict() {
	ctx := context.Background()
	entry := suite.entry(suite.bankAccount.AccountID)
	bankItemID := "stmt-2025-03-0042"

	// The entry reads as unreconciled but the guarded write loses to a
	// concurrent match against a different bank item.
	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SetReconciliation", ctx, entry.EntryID, domain.Reconciled, bankItemID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(fmt.Errorf("%w: entry %s was reconciled concurrently to a different bank item", apperrors.ErrConflict, entry.EntryID)).Once()

	err := suite.service.MarkReconciled(ctx, suite.companyID, entry.EntryID, bankItemID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAuditLogger.AssertNotCalled(suite.T(), "RecordEvent", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestMarkReconciled_EmptyBankItem() {
	ctx := context.Background()

	err := suite.service.MarkReconciled(ctx, suite.companyID, uuid.NewString(), "", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "FindEntryByID", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestUnreconcile_Success() {
	ctx := context.Background()
	entry := suite.entry(suite.bankAccount.AccountID)
	entry.ReconStatus = domain.Reconciled
	entry.MatchedBankItemID = "stmt-2025-03-0042"

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SetReconciliation", ctx, entry.EntryID, domain.Unreconciled, "", suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAuditLogger.On("RecordEvent", ctx, mock.AnythingOfType("domain.AuditEvent")).Return(nil).Once()

	err := suite.service.Unreconcile(ctx, suite.companyID, entry.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUnreconcile_NotReconciledIsNoOp() {
	ctx := context.Background()
	entry := suite.entry(suite.bankAccount.AccountID)

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	err := suite.service.Unreconcile(ctx, suite.companyID, entry.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SetReconciliation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
