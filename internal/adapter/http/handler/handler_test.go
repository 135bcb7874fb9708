package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"balance-ledger/internal/adapter/http/dto"
	"balance-ledger/internal/adapter/http/middleware"
	"balance-ledger/internal/core/domain"
	"balance-ledger/internal/core/ports"
	"balance-ledger/internal/core/ports/mocks"
	"balance-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func postJSON(t *testing.T, body any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), "testuser", "password123").Return(&domain.User{
		ID:       1,
		Username: "testuser",
	}, nil)

	w, c := postJSON(t, dto.RegisterRequest{Username: "testuser", Password: "password123"})
	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(1), data["user_id"])
	assert.Equal(t, "testuser", data["username"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w, c := postJSON(t, map[string]string{})
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), "taken", "password123").Return(nil, apperror.ErrUsernameExists())

	w, c := postJSON(t, dto.RegisterRequest{Username: "taken", Password: "password123"})
	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "testuser", "password123").Return("jwt_token", expiry, nil)

	w, c := postJSON(t, dto.LoginRequest{Username: "testuser", Password: "password123"})
	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "jwt_token", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "testuser", "wrong").
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w, c := postJSON(t, dto.LoginRequest{Username: "testuser", Password: "wrong"})
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Ledger Handler Tests ---

func TestDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Deposit(gomock.Any(), int64(1), dec("100.00")).Return(&domain.Transaction{
		ID:        42,
		UserID:    1,
		Amount:    dec("100.00"),
		Type:      domain.TransactionTypeDeposit,
		CreatedAt: time.Now().UTC(),
	}, nil)

	w, c := postJSON(t, dto.AmountRequest{UserID: 1, Amount: "100.00"})
	c.Set(middleware.CtxUserID, int64(1))
	h.Deposit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(42), data["id"])
	assert.Equal(t, "100.00", data["amount"])
	assert.Equal(t, "deposit", data["transaction_type"])
}

func TestDeposit_MalformedAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewLedgerHandler(mocks.NewMockLedgerService(ctrl))

	for _, amount := range []string{"abc", "-10.00", "0", "1.999"} {
		w, c := postJSON(t, dto.AmountRequest{UserID: 1, Amount: amount})
		c.Set(middleware.CtxUserID, int64(1))
		h.Deposit(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q", amount)
	}
}

func TestDeposit_BalanceNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Deposit(gomock.Any(), int64(99), dec("10.00")).
		Return(nil, apperror.ErrBalanceNotFound())

	w, c := postJSON(t, dto.AmountRequest{UserID: 99, Amount: "10.00"})
	c.Set(middleware.CtxUserID, int64(99))
	h.Deposit(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReserve_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Reserve(gomock.Any(), int64(1), dec("30.00")).
		Return(nil, apperror.ErrInsufficientFunds())

	w, c := postJSON(t, dto.AmountRequest{UserID: 1, Amount: "30.00"})
	c.Set(middleware.CtxUserID, int64(1))
	h.Reserve(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestRecognize_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Recognize(gomock.Any(), ports.RecognizeRequest{
		UserID: 7, ServiceID: 5, OrderID: 9, Amount: dec("30.00"),
	}).Return(&domain.Transaction{
		ID:        3,
		UserID:    7,
		Amount:    dec("30.00"),
		Type:      domain.TransactionTypeRecognition,
		CreatedAt: time.Now().UTC(),
	}, nil)

	w, c := postJSON(t, dto.RecognizeRequest{UserID: 7, ServiceID: 5, OrderID: 9, Amount: "30.00"})
	c.Set(middleware.CtxUserID, int64(7))
	h.Recognize(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "revenue_recognition", data["transaction_type"])
}

func TestFunds_OtherUsersBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No service expectations: ownership is rejected before the ledger is
	// ever touched.
	h := NewLedgerHandler(mocks.NewMockLedgerService(ctrl))

	t.Run("deposit", func(t *testing.T) {
		w, c := postJSON(t, dto.AmountRequest{UserID: 1, Amount: "100.00"})
		c.Set(middleware.CtxUserID, int64(2))
		h.Deposit(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("reserve", func(t *testing.T) {
		w, c := postJSON(t, dto.AmountRequest{UserID: 1, Amount: "100.00"})
		c.Set(middleware.CtxUserID, int64(2))
		h.Reserve(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("recognize", func(t *testing.T) {
		w, c := postJSON(t, dto.RecognizeRequest{UserID: 1, ServiceID: 5, OrderID: 9, Amount: "30.00"})
		c.Set(middleware.CtxUserID, int64(2))
		h.Recognize(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDeposit_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewLedgerHandler(mocks.NewMockLedgerService(ctrl))

	w, c := postJSON(t, dto.AmountRequest{UserID: 1, Amount: "100.00"})
	h.Deposit(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	now := time.Now().UTC()
	mockLedger.EXPECT().Transfer(gomock.Any(), int64(1), int64(2), dec("40.00")).Return(&ports.TransferResult{
		Debit:  &domain.Transaction{ID: 10, UserID: 1, Amount: dec("-40.00"), Type: domain.TransactionTypeTransfer, CreatedAt: now},
		Credit: &domain.Transaction{ID: 11, UserID: 2, Amount: dec("40.00"), Type: domain.TransactionTypeTransfer, CreatedAt: now},
	}, nil)

	w, c := postJSON(t, dto.TransferRequest{RecipientID: 2, Amount: "40.00"})
	c.Set(middleware.CtxUserID, int64(1))
	h.Transfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	debit := data["debit"].(map[string]interface{})
	credit := data["credit"].(map[string]interface{})
	assert.Equal(t, "-40.00", debit["amount"])
	assert.Equal(t, "40.00", credit["amount"])
}

func TestTransfer_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewLedgerHandler(mocks.NewMockLedgerService(ctrl))

	w, c := postJSON(t, dto.TransferRequest{RecipientID: 2, Amount: "40.00"})
	h.Transfer(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransfer_SameUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Transfer(gomock.Any(), int64(1), int64(1), dec("10.00")).
		Return(nil, apperror.ErrSameUserTransfer())

	w, c := postJSON(t, dto.TransferRequest{RecipientID: 1, Amount: "10.00"})
	c.Set(middleware.CtxUserID, int64(1))
	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().GetBalance(gomock.Any(), int64(1)).Return(&domain.Balance{
		UserID:   1,
		Amount:   dec("70.00"),
		Reserved: dec("30.00"),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
	c.Set(middleware.CtxUserID, int64(1))
	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "70.00", data["amount"])
	assert.Equal(t, "30.00", data["reserved_amount"])
}

// --- Report Handler Tests ---

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewReportHandler(mockReporting)

	txType := domain.TransactionTypeDeposit
	mockReporting.EXPECT().ListTransactions(gomock.Any(), ports.TransactionListParams{
		UserID: 1, Type: &txType, Page: 2, PageSize: 10,
	}).Return([]domain.Transaction{
		{ID: 5, UserID: 1, Amount: dec("100.00"), Type: txType, CreatedAt: time.Now().UTC()},
	}, int64(11), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?type=deposit&page=2&page_size=10", nil)
	c.Set(middleware.CtxUserID, int64(1))
	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(11), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
}

func TestListTransactions_UnknownType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewReportHandler(mocks.NewMockReportingService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?type=bogus", nil)
	c.Set(middleware.CtxUserID, int64(1))
	h.ListTransactions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTotals_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewReportHandler(mockReporting)

	mockReporting.EXPECT().GetTotals(gomock.Any(), int64(1)).Return(&ports.LedgerTotals{
		TotalTransactions: 4,
		Deposited:         dec("100.00"),
		Reserved:          dec("30.00"),
		Recognized:        dec("30.00"),
		TransferredIn:     dec("0"),
		TransferredOut:    dec("40.00"),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/reports/totals", nil)
	c.Set(middleware.CtxUserID, int64(1))
	h.GetTotals(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "100.00", data["deposited"])
	assert.Equal(t, "40.00", data["transferred_out"])
}
