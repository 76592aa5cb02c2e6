package grpc

import (
	"context"
	"errors"
	"math/big"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/tx"
	"github.com/LeJamon/goRWAd/internal/storage/history"
)

// Amounts travel as decimal strings so callers never lose precision.

// GetVaultRequest asks for one vault record.
type GetVaultRequest struct {
	AssetID string
}

// GetVaultResponse carries one vault record.
type GetVaultResponse struct {
	AssetID         string
	AssetDecimals   uint8
	ShareDecimals   uint8
	OfferingMode    bool
	FeeCollector    string
	BuyFeeBps       uint16
	SellFeeBps      uint16
	MaxSupply       string
	TotalSupply     string
	SeparatedTeller bool
	LocalTeller     string
	ShareToken      string
	EscrowAccount   string
}

// GetVault retrieves a vault by its underlying asset id.
func (s *Server) GetVault(ctx context.Context, req *GetVaultRequest) (*GetVaultResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.AssetID == "" {
		return nil, status.Error(codes.InvalidArgument, "asset_id is required")
	}

	rec, err := s.service.Vault(req.AssetID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if rec == nil {
		return nil, status.Error(codes.NotFound, "vault not found")
	}

	return &GetVaultResponse{
		AssetID:         rec.AssetID,
		AssetDecimals:   rec.AssetDecimals,
		ShareDecimals:   rec.ShareDecimals,
		OfferingMode:    rec.OfferingMode,
		FeeCollector:    rec.FeeCollector,
		BuyFeeBps:       rec.BuyFeeBps,
		SellFeeBps:      rec.SellFeeBps,
		MaxSupply:       bigString(rec.MaxSupply),
		TotalSupply:     bigString(rec.TotalSupply),
		SeparatedTeller: rec.SeparatedTeller,
		LocalTeller:     rec.LocalTeller,
		ShareToken:      rec.ShareToken(),
		EscrowAccount:   rec.EscrowAccount(),
	}, nil
}

// GetOfferingRequest asks for one offering record.
type GetOfferingRequest struct {
	OfferingID uint64
}

// GetOfferingResponse carries one offering record.
type GetOfferingResponse struct {
	ID            uint64
	Owner         string
	SaleToken     string
	PaymentToken  string
	StartTime     int64
	EndTime       int64
	TargetRaise   string
	TotalRaised   string
	TotalSale     string
	Status        string
	EscrowAccount string
}

// GetOffering retrieves an offering by id.
func (s *Server) GetOffering(ctx context.Context, req *GetOfferingRequest) (*GetOfferingResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}

	rec, err := s.service.Offering(req.OfferingID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if rec == nil {
		return nil, status.Error(codes.NotFound, "offering not found")
	}

	return &GetOfferingResponse{
		ID:            rec.ID,
		Owner:         rec.Owner,
		SaleToken:     rec.SaleToken,
		PaymentToken:  rec.PaymentToken,
		StartTime:     rec.StartTime,
		EndTime:       rec.EndTime,
		TargetRaise:   bigString(rec.TargetRaise),
		TotalRaised:   bigString(rec.TotalRaised),
		TotalSale:     bigString(rec.TotalSale),
		Status:        rec.Status.String(),
		EscrowAccount: rec.EscrowAccount(),
	}, nil
}

// GetParticipationRequest asks for one subscriber's record in an offering.
type GetParticipationRequest struct {
	OfferingID uint64
	Account    string
}

// GetParticipationResponse carries one participation record.
type GetParticipationResponse struct {
	OfferingID uint64
	Account    string
	Subscribed string
	Claimed    bool
}

// GetParticipation retrieves a subscriber's record. Accounts that never
// subscribed get a zero record rather than an error.
func (s *Server) GetParticipation(ctx context.Context, req *GetParticipationRequest) (*GetParticipationResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.Account == "" {
		return nil, status.Error(codes.InvalidArgument, "account is required")
	}

	offering, err := s.service.Offering(req.OfferingID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if offering == nil {
		return nil, status.Error(codes.NotFound, "offering not found")
	}

	rec, err := s.service.Participation(req.OfferingID, req.Account)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := &GetParticipationResponse{
		OfferingID: req.OfferingID,
		Account:    req.Account,
		Subscribed: "0",
	}
	if rec != nil {
		resp.Subscribed = bigString(rec.Subscribed)
		resp.Claimed = rec.Claimed
	}
	return resp, nil
}

// GetBalanceRequest asks for one account balance.
type GetBalanceRequest struct {
	Token   string
	Account string
}

// GetBalanceResponse carries one account balance.
type GetBalanceResponse struct {
	Token   string
	Account string
	Balance string
}

// GetBalance retrieves an account's balance of a token.
func (s *Server) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.Token == "" || req.Account == "" {
		return nil, status.Error(codes.InvalidArgument, "token and account are required")
	}

	balance, err := s.service.Balance(req.Token, req.Account)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &GetBalanceResponse{
		Token:   req.Token,
		Account: req.Account,
		Balance: bigString(balance),
	}, nil
}

// GetAllowanceRequest asks what spender may move from owner.
type GetAllowanceRequest struct {
	Token   string
	Owner   string
	Spender string
}

// GetAllowanceResponse carries one allowance.
type GetAllowanceResponse struct {
	Allowance string
}

// GetAllowance retrieves a token allowance.
func (s *Server) GetAllowance(ctx context.Context, req *GetAllowanceRequest) (*GetAllowanceResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.Token == "" || req.Owner == "" || req.Spender == "" {
		return nil, status.Error(codes.InvalidArgument, "token, owner and spender are required")
	}

	allowance, err := s.service.Allowance(req.Token, req.Owner, req.Spender)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &GetAllowanceResponse{Allowance: bigString(allowance)}, nil
}

// GetAccountRequest asks for an account's roles and KYC status.
type GetAccountRequest struct {
	Account string
}

// GetAccountResponse carries an account's roles and KYC status.
type GetAccountResponse struct {
	Account   string
	Roles     []string
	KycPassed bool
}

// GetAccount retrieves the roles an account holds and its KYC status.
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.Account == "" {
		return nil, status.Error(codes.InvalidArgument, "account is required")
	}

	var roles []string
	for _, role := range []access.Role{
		access.RoleOwner, access.RoleTeller, access.RoleWhitelisted, access.RoleOracleUpdater,
	} {
		if s.service.HasRole(role, req.Account) {
			roles = append(roles, string(role))
		}
	}

	return &GetAccountResponse{
		Account:   req.Account,
		Roles:     roles,
		KycPassed: s.service.IsKycPassed(req.Account),
	}, nil
}

// GetPriceRequest asks for an asset price. RoundID zero means the current
// price.
type GetPriceRequest struct {
	AssetID string
	RoundID uint64
}

// GetPriceResponse carries one price observation.
type GetPriceResponse struct {
	AssetID    string
	RoundID    uint64
	Price      string
	UpdatedAt  int64
	AgeSeconds int64
}

// GetPrice retrieves the current safe price or a historical round.
func (s *Server) GetPrice(ctx context.Context, req *GetPriceRequest) (*GetPriceResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.AssetID == "" {
		return nil, status.Error(codes.InvalidArgument, "asset_id is required")
	}

	if req.RoundID != 0 {
		round, err := s.service.PriceRound(req.AssetID, req.RoundID)
		if err != nil {
			return nil, priceError(err)
		}
		return &GetPriceResponse{
			AssetID:   req.AssetID,
			RoundID:   round.RoundID,
			Price:     bigString(round.Price),
			UpdatedAt: round.UpdatedAt,
		}, nil
	}

	price, age, err := s.service.Price(req.AssetID)
	if err != nil {
		return nil, priceError(err)
	}
	return &GetPriceResponse{
		AssetID:    req.AssetID,
		RoundID:    s.service.LatestRound(req.AssetID),
		Price:      bigString(price),
		AgeSeconds: int64(age.Seconds()),
	}, nil
}

// GetTransactionRequest asks for one journaled transaction.
type GetTransactionRequest struct {
	Seq uint64
}

// GetTransactionResponse carries one journal entry.
type GetTransactionResponse struct {
	Seq       uint64
	TxType    string
	Account   string
	Result    string
	CloseTime int64
	Payload   []byte
}

// GetTransaction retrieves a journaled transaction by engine sequence.
func (s *Server) GetTransaction(ctx context.Context, req *GetTransactionRequest) (*GetTransactionResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}

	entry, err := s.service.Transaction(req.Seq)
	if err != nil {
		return nil, historyError(err)
	}
	return journalResponse(*entry), nil
}

// GetAccountTransactionsRequest asks for an account's recent transactions.
type GetAccountTransactionsRequest struct {
	Account string
	Limit   int
}

// GetAccountTransactionsResponse carries journal entries, newest first.
type GetAccountTransactionsResponse struct {
	Transactions []*GetTransactionResponse
}

// GetAccountTransactions retrieves an account's recent transactions.
func (s *Server) GetAccountTransactions(ctx context.Context, req *GetAccountTransactionsRequest) (*GetAccountTransactionsResponse, error) {
	if s.service == nil {
		return nil, status.Error(codes.Internal, "query service not available")
	}
	if req.Account == "" {
		return nil, status.Error(codes.InvalidArgument, "account is required")
	}

	entries, err := s.service.AccountTransactions(req.Account, req.Limit)
	if err != nil {
		return nil, historyError(err)
	}

	resp := &GetAccountTransactionsResponse{
		Transactions: make([]*GetTransactionResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Transactions = append(resp.Transactions, journalResponse(entry))
	}
	return resp, nil
}

func journalResponse(entry tx.JournalEntry) *GetTransactionResponse {
	return &GetTransactionResponse{
		Seq:       entry.Seq,
		TxType:    entry.TxType,
		Account:   entry.Account,
		Result:    entry.Result,
		CloseTime: entry.CloseTime,
		Payload:   entry.Payload,
	}
}

func priceError(err error) error {
	switch {
	case errors.Is(err, oracle.ErrUnknownAsset):
		return status.Error(codes.NotFound, "unknown asset")
	case errors.Is(err, oracle.ErrAssetInactive):
		return status.Error(codes.FailedPrecondition, "asset is not active")
	case errors.Is(err, oracle.ErrStalePrice):
		return status.Error(codes.FailedPrecondition, "price is stale")
	case errors.Is(err, oracle.ErrRoundEvicted):
		return status.Error(codes.NotFound, "round no longer cached")
	default:
		return status.Error(codes.InvalidArgument, err.Error())
	}
}

func historyError(err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return status.Error(codes.NotFound, "transaction not found")
	case errors.Is(err, ErrNoHistory):
		return status.Error(codes.Unimplemented, "transaction history not available")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func bigString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}
