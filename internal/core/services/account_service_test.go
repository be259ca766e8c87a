package services_test

import (
	"context"
	"errors"
	"testing"

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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:         " cash-01 ",
		Name:         "Cash on hand",
		AccountType:  "ASSET",
		CurrencyCode: "usd",
	}

	var saved domain.Account
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Account)
		}).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Equal("CASH-01", account.Code, "code is normalized")
	suite.Equal("USD", account.CurrencyCode)
	suite.Equal(domain.Asset, account.AccountType)
	suite.True(account.Amount.IsZero(), "new accounts start with a zero balance")
	suite.Equal(creatorUserID, saved.CreatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidTypeRejected() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:         "X-01",
		Name:         "Mystery",
		AccountType:  "CONTRA",
		CurrencyCode: "USD",
	}

	account, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_MissingParent() {
	ctx := context.Background()
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:            "SUB-01",
		Name:            "Sub account",
		AccountType:     "ASSET",
		CurrencyCode:    "USD",
		ParentAccountID: &parentID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, parentID).Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Code:         "CASH-01",
		Name:         "Cash",
		AccountType:  "ASSET",
		CurrencyCode: "USD",
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrDuplicate).Once()

	account, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.GetAccountByID(ctx, accountID)

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestListAccounts_NilBecomesEmpty() {
	ctx := context.Background()

	suite.mockAccountRepo.On("ListAccounts", ctx, 20, 0).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, 0, 0)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoFieldsIsNoOp() {
	ctx := context.Background()
	existing := &domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "CASH-01",
		Name:        "Cash",
		AccountType: domain.Asset,
		Amount:      decimal.NewFromInt(500),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, existing.AccountID, dto.UpdateAccountRequest{}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("Cash", account.Name)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_Name() {
	ctx := context.Background()
	existing := &domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "CASH-01",
		Name:        "Cash",
		AccountType: domain.Asset,
	}
	newName := "Petty cash"

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, existing.AccountID, dto.UpdateAccountRequest{Name: &newName}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(newName, account.Name)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_ReferencedConflicts() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("DeleteAccount", ctx, accountID).
		Return(errors.Join(apperrors.ErrConflict, errors.New("account has entry lines"))).Once()

	err := suite.service.DeleteAccount(ctx, accountID)

	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
