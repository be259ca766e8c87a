package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/core/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
)

type EntryServiceTestSuite struct {
	suite.Suite
	mockEntryRepo   *MockEntryRepository
	mockJournalRepo *MockJournalRepository
	mockAccountSvc  *MockAccountSvc
	service         portssvc.EntrySvcFacade
}

func (suite *EntryServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountSvc = new(MockAccountSvc)
	suite.service = services.NewEntryService(suite.mockEntryRepo, suite.mockJournalRepo, suite.mockAccountSvc)
}

func (suite *EntryServiceTestSuite) balancedRequest(journalID string, status string) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		JournalID: journalID,
		Date:      time.Now().UTC(),
		Reference: "INV-1001",
		Status:    status,
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: "acc-cash", Debit: decimal.NewFromInt(100)},
			{AccountID: "acc-revenue", Credit: decimal.NewFromInt(100)},
		},
	}
}

func (suite *EntryServiceTestSuite) expectAccountsResolve() {
	accounts := map[string]domain.Account{
		"acc-cash":    {AccountID: "acc-cash"},
		"acc-revenue": {AccountID: "acc-revenue"},
	}
	suite.mockAccountSvc.On("GetAccountsByIDs", mock.Anything, mock.Anything).Return(accounts, nil).Once()
}

func (suite *EntryServiceTestSuite) TestCreateEntry_DraftTouchesNoBalances() {
	ctx := context.Background()
	journalID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(&domain.Journal{JournalID: journalID}, nil).Once()
	suite.expectAccountsResolve()

	var savedChanges map[string]decimal.Decimal
	suite.mockEntryRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedChanges, _ = args.Get(2).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, suite.balancedRequest(journalID, ""), userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.EntryDraft, entry.Status)
	suite.Len(entry.Lines, 2)
	suite.Nil(savedChanges, "draft entries must not carry balance changes")
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestCreateEntry_PostedAppliesBalanceChanges() {
	ctx := context.Background()
	journalID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(&domain.Journal{JournalID: journalID}, nil).Once()
	suite.expectAccountsResolve()

	var savedChanges map[string]decimal.Decimal
	suite.mockEntryRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedChanges, _ = args.Get(2).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, suite.balancedRequest(journalID, string(domain.EntryPosted)), userID)

	suite.Require().NoError(err)
	suite.Equal(domain.EntryPosted, entry.Status)
	suite.Require().NotNil(savedChanges)
	suite.True(savedChanges["acc-cash"].Equal(decimal.NewFromInt(100)), "debit increases the account amount")
	suite.True(savedChanges["acc-revenue"].Equal(decimal.NewFromInt(-100)), "credit decreases the account amount")
}

func (suite *EntryServiceTestSuite) TestCreateEntry_UnbalancedRejected() {
	ctx := context.Background()
	journalID := uuid.NewString()

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(&domain.Journal{JournalID: journalID}, nil).Once()

	req := suite.balancedRequest(journalID, "")
	req.Lines[1].Credit = decimal.NewFromInt(90)

	entry, err := suite.service.CreateEntry(ctx, req, uuid.NewString())

	suite.Nil(entry)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_MissingAccountRejected() {
	ctx := context.Background()
	journalID := uuid.NewString()

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(&domain.Journal{JournalID: journalID}, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", mock.Anything, mock.Anything).
		Return(map[string]domain.Account{"acc-cash": {AccountID: "acc-cash"}}, nil).Once()

	entry, err := suite.service.CreateEntry(ctx, suite.balancedRequest(journalID, ""), uuid.NewString())

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "acc-revenue")
}

func (suite *EntryServiceTestSuite) TestCreateEntry_UnknownJournalRejected() {
	ctx := context.Background()
	journalID := uuid.NewString()

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(nil, apperrors.ErrNotFound).Once()

	entry, err := suite.service.CreateEntry(ctx, suite.balancedRequest(journalID, ""), uuid.NewString())

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *EntryServiceTestSuite) TestPostEntry_DraftOnly() {
	ctx := context.Background()
	entryID := uuid.NewString()
	userID := uuid.NewString()

	draft := &domain.JournalEntry{
		EntryID: entryID,
		Status:  domain.EntryDraft,
		Lines: []domain.EntryLine{
			{AccountID: "acc-cash", Debit: decimal.NewFromInt(50)},
			{AccountID: "acc-revenue", Credit: decimal.NewFromInt(50)},
		},
	}
	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).Return(draft, nil).Once()

	var postedChanges map[string]decimal.Decimal
	suite.mockEntryRepo.On("MarkEntryPosted", ctx, entryID, mock.Anything, userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			postedChanges, _ = args.Get(2).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	entry, err := suite.service.PostEntry(ctx, entryID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.EntryPosted, entry.Status)
	suite.Require().NotNil(postedChanges)
	suite.True(postedChanges["acc-cash"].Equal(decimal.NewFromInt(50)))
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestPostEntry_AlreadyPostedConflicts() {
	ctx := context.Background()
	entryID := uuid.NewString()

	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.EntryPosted}, nil).Once()

	entry, err := suite.service.PostEntry(ctx, entryID, uuid.NewString())

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "MarkEntryPosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestVoidEntry_PostedIsImmutable() {
	ctx := context.Background()
	entryID := uuid.NewString()

	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.EntryPosted}, nil).Once()

	entry, err := suite.service.VoidEntry(ctx, entryID, uuid.NewString())

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *EntryServiceTestSuite) TestUpdateEntry_DraftHeaderFields() {
	ctx := context.Background()
	entryID := uuid.NewString()
	userID := uuid.NewString()
	newRef := "INV-2002"

	suite.mockEntryRepo.On("FindEntryByID", ctx, entryID).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.EntryDraft, Reference: "INV-1001"}, nil).Once()
	suite.mockEntryRepo.On("UpdateEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	entry, err := suite.service.UpdateEntry(ctx, entryID, dto.UpdateEntryRequest{Reference: &newRef}, userID)

	suite.Require().NoError(err)
	suite.Equal(newRef, entry.Reference)
	suite.Equal(userID, entry.LastUpdatedBy)
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}
