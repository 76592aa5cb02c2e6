package tx

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/state"
)

// Journal receives a record of every applied call, successful or not.
type Journal interface {
	Record(entry JournalEntry) error
}

// JournalEntry describes one engine call.
type JournalEntry struct {
	Seq       uint64
	TxType    string
	Account   string
	Result    string
	CloseTime int64
	Payload   []byte
}

// Engine executes transactions against the protocol state. Each call runs
// validate then apply against a buffered view committed only on success, so
// a failed call leaves no partial state. The engine is non-reentrant: a
// transaction that calls back into Apply during its own apply is rejected
// with TefREENTRANT_CALL.
type Engine struct {
	mu   sync.Mutex
	busy atomic.Bool

	store  *state.Store
	oracle PriceSource
	perms  access.Permissions

	clock        func() time.Time
	maxPriceAge  time.Duration
	paymentToken string
	journal      Journal
	logger       *log.Logger

	seq uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock (tests use a manual clock).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithJournal attaches a call journal.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithMaxPriceAge sets the oracle staleness cutoff.
func WithMaxPriceAge(d time.Duration) Option {
	return func(e *Engine) { e.maxPriceAge = d }
}

// WithPaymentToken sets the protocol payment token.
func WithPaymentToken(token string) Option {
	return func(e *Engine) { e.paymentToken = token }
}

// WithSequence sets the starting call sequence, used when resuming from a
// persisted journal.
func WithSequence(seq uint64) Option {
	return func(e *Engine) { e.seq = seq }
}

// WithLogger overrides the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over the given store and collaborators.
func NewEngine(store *state.Store, oracle PriceSource, perms access.Permissions, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		oracle:       oracle,
		perms:        perms,
		clock:        time.Now,
		maxPriceAge:  time.Hour,
		paymentToken: "USD",
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the backing state for read-only queries.
func (e *Engine) Store() *state.Store { return e.store }

// Oracle exposes the price source for read-only queries.
func (e *Engine) Oracle() PriceSource { return e.oracle }

// Perms exposes the permission source for read-only queries.
func (e *Engine) Perms() access.Permissions { return e.perms }

// PaymentToken returns the protocol payment token.
func (e *Engine) PaymentToken() string { return e.paymentToken }

// MaxPriceAge returns the oracle staleness cutoff.
func (e *Engine) MaxPriceAge() time.Duration { return e.maxPriceAge }

// CloseTime returns the current call time (unix seconds).
func (e *Engine) CloseTime() int64 { return e.clock().Unix() }

// Seq returns the sequence of the last applied call.
func (e *Engine) Seq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

// Apply executes one transaction to completion. The returned result is
// TesSUCCESS exactly when the buffered state changes were committed.
func (e *Engine) Apply(txn Transaction) Result {
	// The busy flag, not the mutex, detects reentry: a nested Apply from
	// inside a transaction arrives on the same goroutine and must fail
	// fast instead of deadlocking.
	if !e.busy.CompareAndSwap(false, true) {
		return TefREENTRANT_CALL
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	result := e.doApply(txn)
	e.seq++
	e.record(e.seq, txn, result)
	return result
}

func (e *Engine) doApply(txn Transaction) Result {
	if err := txn.Validate(); err != nil {
		return validationResult(err)
	}

	appliable, ok := txn.(Appliable)
	if !ok {
		return TefINTERNAL
	}

	table := state.NewApplyStateTable(e.store)
	ctx := &ApplyContext{
		View:   table,
		Perms:  e.perms,
		Oracle: e.oracle,
		Config: EngineConfig{
			CloseTime:    e.clock().Unix(),
			MaxPriceAge:  e.maxPriceAge,
			PaymentToken: e.paymentToken,
		},
	}

	result := appliable.Apply(ctx)
	if !result.Success() {
		return result
	}
	if err := table.Commit(); err != nil {
		e.logger.Printf("engine: commit failed for %s: %v", txn.TxType().Name(), err)
		return TefINTERNAL
	}
	return result
}

func (e *Engine) record(seq uint64, txn Transaction, result Result) {
	if e.journal == nil {
		return
	}
	payload, err := json.Marshal(txn)
	if err != nil {
		payload = nil
	}
	entry := JournalEntry{
		Seq:       seq,
		TxType:    txn.TxType().Name(),
		Account:   txn.GetCommon().Account,
		Result:    result.String(),
		CloseTime: e.clock().Unix(),
		Payload:   payload,
	}
	if err := e.journal.Record(entry); err != nil {
		e.logger.Printf("engine: journal write failed: %v", err)
	}
}

// validationResult maps a preflight error to its tem code.
func validationResult(err error) Result {
	switch {
	case errors.Is(err, ErrMissingAccount):
		return TemINVALID_ACCOUNT
	case errors.Is(err, ErrBadAmount):
		return TemBAD_AMOUNT
	case errors.Is(err, ErrBadTimeRange):
		return TemBAD_TIME_RANGE
	case errors.Is(err, ErrBadFeeRate):
		return TemBAD_FEE_RATE
	default:
		return TemMALFORMED
	}
}
