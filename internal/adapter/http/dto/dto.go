package dto

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,safe_id,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AmountRequest is the request body for deposit and reserve operations.
// Amounts travel as strings so no float precision is lost in transit.
type AmountRequest struct {
	UserID int64  `json:"user_id" binding:"required,gt=0"`
	Amount string `json:"amount" binding:"required"`
}

// RecognizeRequest is the request body for revenue recognition.
type RecognizeRequest struct {
	UserID    int64  `json:"user_id" binding:"required,gt=0"`
	ServiceID int64  `json:"service_id" binding:"required,gt=0"`
	OrderID   int64  `json:"order_id" binding:"required,gt=0"`
	Amount    string `json:"amount" binding:"required"`
}

// TransferRequest is the request body for a funds transfer.
type TransferRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required,gt=0"`
	Amount      string `json:"amount" binding:"required"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	UserID   int64  `json:"user_id"`
	Amount   string `json:"amount"`
	Reserved string `json:"reserved_amount"`
}

// TransactionResponse is the response body for a single ledger entry.
type TransactionResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Amount    string `json:"amount"`
	Type      string `json:"transaction_type"`
	CreatedAt string `json:"created_at"`
}

// TransferResponse is the response body for a completed transfer.
type TransferResponse struct {
	Debit  TransactionResponse `json:"debit"`
	Credit TransactionResponse `json:"credit"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ReportResponse is the response body for a financial report row.
type ReportResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	ServiceID    int64  `json:"service_id"`
	OrderID      int64  `json:"order_id"`
	Amount       string `json:"amount"`
	RecognizedAt string `json:"recognized_at"`
}

// ReportListResponse wraps a paginated financial report list.
type ReportListResponse struct {
	Items      []ReportResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// TotalsResponse is the response for ledger reconciliation totals.
type TotalsResponse struct {
	TotalTransactions int64  `json:"total_transactions"`
	Deposited         string `json:"deposited"`
	Reserved          string `json:"reserved"`
	Recognized        string `json:"recognized"`
	TransferredIn     string `json:"transferred_in"`
	TransferredOut    string `json:"transferred_out"`
}
