package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"balance-ledger/internal/core/domain"
	"balance-ledger/internal/core/ports"
	"balance-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ledgerStore is the shared in-memory state behind the test repos.
//
// txMu serializes whole units of work the way FOR UPDATE row locks do in
// PostgreSQL: the transactor's Begin acquires it and Commit/Rollback release
// it, so an operation's read-check-write sequence is atomic. dataMu guards
// the maps for non-transactional reads.
type ledgerStore struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex

	users        map[int64]*domain.User
	balances     map[int64]*domain.Balance
	transactions []domain.Transaction
	reports      []domain.FinancialReport

	nextUserID   int64
	nextTxID     int64
	nextReportID int64
}

func newLedgerStore() *ledgerStore {
	return &ledgerStore{
		users:    make(map[int64]*domain.User),
		balances: make(map[int64]*domain.Balance),
	}
}

// --- Transactor ---

// lockingTransactor serializes units of work on the shared store.
type lockingTransactor struct {
	store *ledgerStore
}

func newLockingTransactor(store *ledgerStore) *lockingTransactor {
	return &lockingTransactor{store: store}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.store.txMu.Lock()
	return &memTx{store: t.store}, nil
}

// memTx releases the store lock exactly once. Services call Commit and then
// the deferred Rollback, so the second release must be a no-op.
type memTx struct {
	store *ledgerStore
	done  bool
	mu    sync.Mutex
}

func (t *memTx) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.done = true
		t.store.txMu.Unlock()
	}
}

func (t *memTx) Commit(ctx context.Context) error   { t.release(); return nil }
func (t *memTx) Rollback(ctx context.Context) error { t.release(); return nil }

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// --- Balance Repo ---

type inMemoryBalanceRepo struct {
	store *ledgerStore
}

func newInMemoryBalanceRepo(store *ledgerStore) *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{store: store}
}

func (r *inMemoryBalanceRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.Balance) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	if _, ok := r.store.balances[b.UserID]; ok {
		return fmt.Errorf("balance already exists: user %d", b.UserID)
	}
	copied := *b
	r.store.balances[b.UserID] = &copied
	return nil
}

func (r *inMemoryBalanceRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Balance, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	b, ok := r.store.balances[userID]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

// GetForUpdate returns a copy so a failed operation cannot leave partial
// mutations behind; Save writes the copy back.
func (r *inMemoryBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Balance, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *inMemoryBalanceRepo) Save(ctx context.Context, tx pgx.Tx, b *domain.Balance) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	if _, ok := r.store.balances[b.UserID]; !ok {
		return fmt.Errorf("balance not found: user %d", b.UserID)
	}
	copied := *b
	r.store.balances[b.UserID] = &copied
	return nil
}

// --- Transaction Repo ---

type inMemoryTransactionRepo struct {
	store *ledgerStore
}

func newInMemoryTransactionRepo(store *ledgerStore) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{store: store}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	r.store.nextTxID++
	t.ID = r.store.nextTxID
	r.store.transactions = append(r.store.transactions, *t)
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	for i := range r.store.transactions {
		if r.store.transactions[i].ID == id {
			copied := r.store.transactions[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()

	var result []domain.Transaction
	for _, t := range r.store.transactions {
		if t.UserID != params.UserID {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.From != nil && t.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && t.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetTotals(ctx context.Context, userID int64) (*ports.LedgerTotals, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()

	totals := &ports.LedgerTotals{}
	for _, t := range r.store.transactions {
		if t.UserID != userID {
			continue
		}
		totals.TotalTransactions++
		switch t.Type {
		case domain.TransactionTypeDeposit:
			totals.Deposited = totals.Deposited.Add(t.Amount)
		case domain.TransactionTypeReservation:
			totals.Reserved = totals.Reserved.Add(t.Amount)
		case domain.TransactionTypeRecognition:
			totals.Recognized = totals.Recognized.Add(t.Amount)
		case domain.TransactionTypeTransfer:
			if t.Amount.IsNegative() {
				totals.TransferredOut = totals.TransferredOut.Add(t.Amount.Neg())
			} else {
				totals.TransferredIn = totals.TransferredIn.Add(t.Amount)
			}
		}
	}
	return totals, nil
}

// --- Report Repo ---

type inMemoryReportRepo struct {
	store *ledgerStore
}

func newInMemoryReportRepo(store *ledgerStore) *inMemoryReportRepo {
	return &inMemoryReportRepo{store: store}
}

func (r *inMemoryReportRepo) Create(ctx context.Context, tx pgx.Tx, rep *domain.FinancialReport) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	r.store.nextReportID++
	rep.ID = r.store.nextReportID
	r.store.reports = append(r.store.reports, *rep)
	return nil
}

func (r *inMemoryReportRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]domain.FinancialReport, int64, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()

	var result []domain.FinancialReport
	for _, rep := range r.store.reports {
		if rep.UserID == userID {
			result = append(result, rep)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	total := int64(len(result))

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.FinancialReport{}, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- User Repo ---

type inMemoryUserRepo struct {
	store *ledgerStore
}

func newInMemoryUserRepo(store *ledgerStore) *inMemoryUserRepo {
	return &inMemoryUserRepo{store: store}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	r.store.dataMu.Lock()
	defer r.store.dataMu.Unlock()
	for _, existing := range r.store.users {
		if existing.Username == u.Username {
			return apperror.ErrUsernameExists()
		}
	}
	r.store.nextUserID++
	u.ID = r.store.nextUserID
	copied := *u
	r.store.users[u.ID] = &copied
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.dataMu.RLock()
	defer r.store.dataMu.RUnlock()
	for _, u := range r.store.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}
