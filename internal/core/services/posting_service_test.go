package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	"github.com/finbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/core/services"
	"github.com/finbooks/ledger_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

// Ensure MockTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockTransactionRepository) SaveDraft(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateDraft(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) PostTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry, now time.Time) error {
	args := m.Called(ctx, txn, entries, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) PostReversal(ctx context.Context, original domain.Transaction, reversal domain.Transaction, entries []domain.LedgerEntry, now time.Time) error {
	args := m.Called(ctx, original, reversal, entries, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTransactionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountService (as used by PostingService) ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, companyID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, companyID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	args := m.Called(ctx, companyID, accountID, userID)
	return args.Error(0)
}

// --- Mock AllocationReader ---
type MockAllocationReader struct {
	mock.Mock
}

var _ portsrepo.AllocationReader = (*MockAllocationReader)(nil)

func (m *MockAllocationReader) SumAllocationsForTransaction(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationReader) ListAllocationsForTransaction(ctx context.Context, transactionID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

// --- Mock AuditLogger ---
type MockAuditLogger struct {
	mock.Mock
}

var _ portssvc.AuditLogger = (*MockAuditLogger)(nil)

func (m *MockAuditLogger) RecordEvent(ctx context.Context, event domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Test Suite Setup ---
type PostingServiceTestSuite struct {
	suite.Suite
	mockTxnRepo       *MockTransactionRepository
	mockAccountSvc    *MockAccountService
	mockAllocations   *MockAllocationReader
	mockAuditLogger   *MockAuditLogger
	service           portssvc.PostingSvcFacade
	bankAccount       domain.Account
	salesAccount      domain.Account
	taxPayableAccount domain.Account
	companyID         string
	userID            string
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockAllocations = new(MockAllocationReader)
	suite.mockAuditLogger = new(MockAuditLogger)
	suite.service = services.NewPostingService(
		suite.mockTxnRepo,
		suite.mockAccountSvc,
		services.WithAllocationReader(suite.mockAllocations),
		services.WithPostingAuditLogger(suite.mockAuditLogger),
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.bankAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Code:        "1200",
		Name:        "Bank",
		AccountType: domain.Asset,
		IsActive:    true,
	}
	suite.salesAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Code:        "4000",
		Name:        "Sales",
		AccountType: domain.Income,
		IsActive:    true,
	}
	suite.taxPayableAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Code:        "2200",
		Name:        "Tax Payable",
		AccountType: domain.Liability,
		IsActive:    true,
	}
}

func (suite *PostingServiceTestSuite) accountsMap(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		m[acc.AccountID] = acc
	}
	return m
}

// newDraft builds a DRAFT transaction owned by the suite's user.
func (suite *PostingServiceTestSuite) newDraft(lines ...domain.TransactionLine) *domain.Transaction {
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		CompanyID:     suite.companyID,
		Type:          domain.Journal,
		Date:          time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Description:   "Invoice INV-042",
		Status:        domain.Draft,
		Version:       1,
		AuditFields:   domain.NewAuditFields(suite.userID, time.Now().UTC()),
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].TransactionID = txn.TransactionID
	}
	txn.Lines = lines
	return txn
}

func line(accountID string, amount string, direction domain.EntryDirection) domain.TransactionLine {
	return domain.TransactionLine{
		AccountID: accountID,
		Amount:    decimal.RequireFromString(amount),
		Direction: direction,
	}
}

// --- Test Cases ---

func (suite *PostingServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		Type:        string(domain.Journal),
		Date:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Invoice INV-042",
		Lines: []dto.CreateLineRequest{
			{AccountID: suite.bankAccount.AccountID, Amount: decimal.RequireFromString("115.00"), Direction: string(domain.Debit)},
			{AccountID: suite.salesAccount.AccountID, Amount: decimal.RequireFromString("100.00"), Direction: string(domain.Credit)},
		},
	}

	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, suite.salesAccount), nil).Once()
	suite.mockTxnRepo.On("SaveDraft", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	created, err := suite.service.CreateTransaction(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.TransactionID)
	suite.Equal(domain.Draft, created.Status)
	suite.Equal(int64(1), created.Version)
	suite.Equal(suite.userID, created.CreatedBy)
	suite.Len(created.Lines, 2)

	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestCreateTransaction_UnknownType() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{Type: "INVOICE", Date: time.Now()}

	created, err := suite.service.CreateTransaction(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestGetTransactionByID_OtherCompany() {
	ctx := context.Background()
	txn := suite.newDraft()
	txn.CompanyID = uuid.NewString()

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	found, err := suite.service.GetTransactionByID(ctx, suite.companyID, txn.TransactionID)

	suite.Require().Error(err)
	suite.Nil(found)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PostingServiceTestSuite) TestAddLine_Success() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
	)
	req := dto.CreateLineRequest{
		AccountID: suite.salesAccount.AccountID,
		Amount:    decimal.RequireFromString("100.00"),
		Direction: string(domain.Credit),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, []string{suite.salesAccount.AccountID}).
		Return(suite.accountsMap(suite.salesAccount), nil).Once()
	suite.mockTxnRepo.On("UpdateDraft", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	updated, err := suite.service.AddLine(ctx, suite.companyID, txn.TransactionID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Len(updated.Lines, 2)
	suite.Equal(int64(2), updated.Version)
	suite.False(updated.IsBalanced())

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestAddLine_NotOwner() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "50.00", domain.Debit),
	)
	otherUser := uuid.NewString()
	req := dto.CreateLineRequest{
		AccountID: suite.salesAccount.AccountID,
		Amount:    decimal.RequireFromString("50.00"),
		Direction: string(domain.Credit),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	updated, err := suite.service.AddLine(ctx, suite.companyID, txn.TransactionID, req, otherUser)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestUpdateLine_Success() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
		line(suite.salesAccount.AccountID, "100.00", domain.Credit),
	)
	lineID := txn.Lines[1].LineID
	req := dto.CreateLineRequest{
		AccountID: suite.salesAccount.AccountID,
		Amount:    decimal.RequireFromString("115.00"),
		Direction: string(domain.Credit),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, []string{suite.salesAccount.AccountID}).
		Return(suite.accountsMap(suite.salesAccount), nil).Once()
	suite.mockTxnRepo.On("UpdateDraft", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	updated, err := suite.service.UpdateLine(ctx, suite.companyID, txn.TransactionID, lineID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Len(updated.Lines, 2)
	suite.Equal(int64(2), updated.Version)

	// Identity is preserved; the amount took the new value.
	suite.Equal(lineID, updated.Lines[1].LineID)
	suite.True(updated.Lines[1].Amount.Equal(decimal.RequireFromString("115.00")))
	suite.True(updated.IsBalanced())

	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestUpdateLine_UnknownLine() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
	)
	req := dto.CreateLineRequest{
		AccountID: suite.bankAccount.AccountID,
		Amount:    decimal.RequireFromString("90.00"),
		Direction: string(domain.Debit),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, []string{suite.bankAccount.AccountID}).
		Return(suite.accountsMap(suite.bankAccount), nil).Once()

	updated, err := suite.service.UpdateLine(ctx, suite.companyID, txn.TransactionID, uuid.NewString(), req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestRemoveLine_NotDraft() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "50.00", domain.Debit),
		line(suite.salesAccount.AccountID, "50.00", domain.Credit),
	)
	txn.Status = domain.Posted

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	updated, err := suite.service.RemoveLine(ctx, suite.companyID, txn.TransactionID, txn.Lines[0].LineID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *PostingServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
		line(suite.salesAccount.AccountID, "100.00", domain.Credit),
		line(suite.taxPayableAccount.AccountID, "15.00", domain.Credit),
	)
	// Draft was last touched by a different user than the one posting.
	draftEditorID := uuid.NewString()
	txn.LastUpdatedBy = draftEditorID

	var capturedTxn domain.Transaction
	var postedEntries []domain.LedgerEntry
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, suite.salesAccount, suite.taxPayableAccount), nil).Once()
	suite.mockTxnRepo.On("PostTransaction", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.LedgerEntry"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			capturedTxn = args.Get(1).(domain.Transaction)
			postedEntries = args.Get(2).([]domain.LedgerEntry)
		}).Return(nil).Once()
	suite.mockAuditLogger.On("RecordEvent", ctx, mock.AnythingOfType("domain.AuditEvent")).Return(nil).Once()

	posted, err := suite.service.Post(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal(domain.Posted, posted.Status)
	suite.Equal(int64(2), posted.Version)

	// The posted row records the posting user, not the draft's last editor.
	suite.Equal(suite.userID, capturedTxn.LastUpdatedBy)
	suite.NotEqual(draftEditorID, capturedTxn.LastUpdatedBy)

	// One entry per line, value on the side matching the line direction.
	suite.Require().Len(postedEntries, 3)
	suite.True(postedEntries[0].Debit.Equal(decimal.RequireFromString("115.00")))
	suite.True(postedEntries[0].Credit.IsZero())
	suite.True(postedEntries[1].Credit.Equal(decimal.RequireFromString("100.00")))
	suite.True(postedEntries[1].Debit.IsZero())
	suite.True(postedEntries[2].Credit.Equal(decimal.RequireFromString("15.00")))
	for _, entry := range postedEntries {
		suite.NotEmpty(entry.EntryID)
		suite.Equal(txn.TransactionID, entry.TransactionID)
		suite.Equal(txn.Date, entry.PostingDate)
		suite.Equal(domain.Unreconciled, entry.ReconStatus)
	}

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAuditLogger.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPost_Unbalanced() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "100.00", domain.Debit),
		line(suite.salesAccount.AccountID, "90.00", domain.Credit),
	)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, suite.salesAccount), nil).Once()

	posted, err := suite.service.Post(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(posted)

	var unbalanced *apperrors.UnbalancedTransactionError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.Equal("100.00", unbalanced.Debits.StringFixed(2))
	suite.Equal("90.00", unbalanced.Credits.StringFixed(2))

	suite.mockTxnRepo.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAuditLogger.AssertNotCalled(suite.T(), "RecordEvent", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_SingleLine() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "100.00", domain.Debit),
	)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	posted, err := suite.service.Post(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, services.ErrTransactionMinLines)
}

func (suite *PostingServiceTestSuite) TestPost_SingleAccount() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "100.00", domain.Debit),
		line(suite.bankAccount.AccountID, "100.00", domain.Credit),
	)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	posted, err := suite.service.Post(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, services.ErrTransactionMinAccounts)
}

func (suite *PostingServiceTestSuite) TestPost_InactiveAccount() {
	ctx := context.Background()
	dormant := suite.salesAccount
	dormant.IsActive = false
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "100.00", domain.Debit),
		line(dormant.AccountID, "100.00", domain.Credit),
	)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, dormant), nil).Once()

	posted, err := suite.service.Post(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, services.ErrAccountInactive)
}

func (suite *PostingServiceTestSuite) TestPost_AlreadyPosted() {
	ctx := context.Background()
	txn := suite.newDraft(
		line(suite.bankAccount.AccountID, "100.00", domain.Debit),
		line(suite.salesAccount.AccountID, "100.00", domain.Credit),
	)
	txn.Status = domain.Posted

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	posted, err := suite.service.Post(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestReverse_Success() {
	ctx := context.Background()
	original := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
		line(suite.salesAccount.AccountID, "100.00", domain.Credit),
		line(suite.taxPayableAccount.AccountID, "15.00", domain.Credit),
	)
	original.Status = domain.Posted
	reversalDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	req := dto.ReverseTransactionRequest{Date: reversalDate, Reason: "duplicate invoice"}

	var capturedReversal domain.Transaction
	var capturedEntries []domain.LedgerEntry
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockAllocations.On("SumAllocationsForTransaction", ctx, original.TransactionID).Return(decimal.Zero, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, suite.salesAccount, suite.taxPayableAccount), nil).Once()
	suite.mockTxnRepo.On("PostReversal", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.LedgerEntry"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			capturedReversal = args.Get(2).(domain.Transaction)
			capturedEntries = args.Get(3).([]domain.LedgerEntry)
		}).Return(nil).Once()
	suite.mockAuditLogger.On("RecordEvent", ctx, mock.AnythingOfType("domain.AuditEvent")).Return(nil).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, original.TransactionID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(domain.Posted, reversal.Status)
	suite.Require().NotNil(reversal.ReversalOfID)
	suite.Equal(original.TransactionID, *reversal.ReversalOfID)
	suite.Equal(reversalDate, reversal.Date)
	suite.Contains(reversal.Description, "Reversal of:")
	suite.Contains(reversal.Description, "duplicate invoice")

	// Every line mirrored: same account and amount, opposite direction.
	suite.Require().Len(capturedReversal.Lines, len(original.Lines))
	for i, mirrored := range capturedReversal.Lines {
		suite.Equal(original.Lines[i].AccountID, mirrored.AccountID)
		suite.True(original.Lines[i].Amount.Equal(mirrored.Amount))
		suite.Equal(original.Lines[i].Direction.Opposite(), mirrored.Direction)
	}
	suite.True(capturedReversal.DebitTotal().Equal(capturedReversal.CreditTotal()))

	suite.Require().Len(capturedEntries, 3)
	suite.True(capturedEntries[0].Credit.Equal(decimal.RequireFromString("115.00")))
	suite.True(capturedEntries[1].Debit.Equal(decimal.RequireFromString("100.00")))
	suite.True(capturedEntries[2].Debit.Equal(decimal.RequireFromString("15.00")))

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAllocations.AssertExpectations(suite.T())
	suite.mockAuditLogger.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestReverse_BlockedByAllocations() {
	ctx := context.Background()
	original := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
		line(suite.salesAccount.AccountID, "115.00", domain.Credit),
	)
	original.Status = domain.Posted
	req := dto.ReverseTransactionRequest{Date: time.Now()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockAllocations.On("SumAllocationsForTransaction", ctx, original.TransactionID).
		Return(decimal.RequireFromString("50.00"), nil).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, original.TransactionID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversal)

	var blocked *apperrors.HasDependentAllocationsError
	suite.Require().ErrorAs(err, &blocked)
	suite.Equal(original.TransactionID, blocked.TransactionID)
	suite.Equal("50.00", blocked.AllocatedAmount.StringFixed(2))

	suite.mockTxnRepo.AssertNotCalled(suite.T(), "PostReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestReverse_DraftRejected() {
	ctx := context.Background()
	draft := suite.newDraft(
		line(suite.bankAccount.AccountID, "10.00", domain.Debit),
		line(suite.salesAccount.AccountID, "10.00", domain.Credit),
	)
	req := dto.ReverseTransactionRequest{Date: time.Now()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, draft.TransactionID).Return(draft, nil).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, draft.TransactionID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *PostingServiceTestSuite) TestReverse_AlreadyReversed() {
	ctx := context.Background()
	original := suite.newDraft(
		line(suite.bankAccount.AccountID, "10.00", domain.Debit),
		line(suite.salesAccount.AccountID, "10.00", domain.Credit),
	)
	original.Status = domain.Void
	existingReversalID := uuid.NewString()
	original.ReversedByID = &existingReversalID
	req := dto.ReverseTransactionRequest{Date: time.Now()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, original.TransactionID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *PostingServiceTestSuite) TestReverse_OfReversalRejected() {
	ctx := context.Background()
	originalID := uuid.NewString()
	reversalTxn := suite.newDraft(
		line(suite.bankAccount.AccountID, "10.00", domain.Credit),
		line(suite.salesAccount.AccountID, "10.00", domain.Debit),
	)
	reversalTxn.Status = domain.Posted
	reversalTxn.ReversalOfID = &originalID
	req := dto.ReverseTransactionRequest{Date: time.Now()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, reversalTxn.TransactionID).Return(reversalTxn, nil).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, reversalTxn.TransactionID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *PostingServiceTestSuite) TestReverse_InactiveAccount() {
	ctx := context.Background()
	dormant := suite.salesAccount
	dormant.IsActive = false
	original := suite.newDraft(
		line(suite.bankAccount.AccountID, "115.00", domain.Debit),
		line(dormant.AccountID, "115.00", domain.Credit),
	)
	original.Status = domain.Posted
	req := dto.ReverseTransactionRequest{Date: time.Now()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockAllocations.On("SumAllocationsForTransaction", ctx, original.TransactionID).Return(decimal.Zero, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, dormant), nil).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, original.TransactionID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "PostReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestReverse_AuditFailureDoesNotFailReversal() {
	ctx := context.Background()
	original := suite.newDraft(
		line(suite.bankAccount.AccountID, "25.00", domain.Debit),
		line(suite.salesAccount.AccountID, "25.00", domain.Credit),
	)
	original.Status = domain.Posted
	req := dto.ReverseTransactionRequest{Date: time.Now()}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockAllocations.On("SumAllocationsForTransaction", ctx, original.TransactionID).Return(decimal.Zero, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(suite.accountsMap(suite.bankAccount, suite.salesAccount), nil).Once()
	suite.mockTxnRepo.On("PostReversal", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("[]domain.LedgerEntry"), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAuditLogger.On("RecordEvent", ctx, mock.AnythingOfType("domain.AuditEvent")).Return(errors.New("audit sink down")).Once()

	reversal, err := suite.service.Reverse(ctx, suite.companyID, original.TransactionID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.mockAuditLogger.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestListTransactions_PassesToken() {
	ctx := context.Background()
	token := "b2s9dG9rZW4"
	params := dto.ListTransactionsParams{Limit: 10, NextToken: token, IncludeReversals: true}

	returned := []domain.Transaction{*suite.newDraft()}
	suite.mockTxnRepo.On("ListTransactionsByCompany", ctx, suite.companyID, 10, &token, true).
		Return(returned, "next-page", nil).Once()

	resp, err := suite.service.ListTransactions(ctx, suite.companyID, params)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Len(resp.Transactions, 1)
	suite.Equal("next-page", resp.NextToken)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
