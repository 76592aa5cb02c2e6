package grpc

import (
	"errors"
	"math/big"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/LeJamon/goRWAd/internal/core/access"
	"github.com/LeJamon/goRWAd/internal/core/oracle"
	"github.com/LeJamon/goRWAd/internal/core/state"
	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// QueryServiceInterface defines the read operations needed by the gRPC
// handlers. This interface is implemented by *LocalBackend.
type QueryServiceInterface interface {
	// Vault returns a vault record, nil when absent
	Vault(assetID string) (*state.Vault, error)

	// Offering returns an offering record, nil when absent
	Offering(id uint64) (*state.Offering, error)

	// Participation returns one subscriber's record, nil when absent
	Participation(id uint64, account string) (*state.Participation, error)

	// Balance returns an account's balance of a token
	Balance(token, account string) (*big.Int, error)

	// Allowance returns what spender may move from owner
	Allowance(token, owner, spender string) (*big.Int, error)

	// HasRole reports whether an account carries a role
	HasRole(role access.Role, account string) bool

	// IsKycPassed reports whether an account has passed KYC
	IsKycPassed(account string) bool

	// Price returns the current safe price of an asset and its age
	Price(assetID string) (*big.Int, time.Duration, error)

	// PriceRound returns a cached historical price round
	PriceRound(assetID string, roundID uint64) (*oracle.Round, error)

	// LatestRound returns the last assigned round id, zero if none
	LatestRound(assetID string) uint64

	// Transaction returns a journaled transaction by sequence
	Transaction(seq uint64) (*tx.JournalEntry, error)

	// AccountTransactions returns an account's recent transactions
	AccountTransactions(account string, limit int) ([]tx.JournalEntry, error)
}

// Server represents the gRPC query server for the rwad node.
type Server struct {
	mu sync.RWMutex

	// grpcServer is the underlying gRPC server
	grpcServer *grpc.Server

	// service provides access to node state
	service QueryServiceInterface

	// config holds the server configuration
	config *ServerConfig

	// listener is the network listener
	listener net.Listener

	// running indicates if the server is currently running
	running bool
}

// NewServer creates a new gRPC server with the given configuration.
func NewServer(cfg *ServerConfig, svc QueryServiceInterface) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	}

	return &Server{
		grpcServer: grpc.NewServer(opts...),
		service:    svc,
		config:     cfg,
	}, nil
}

// Start starts the gRPC server and begins accepting connections.
// This method blocks until the server is stopped or an error occurs.
func (s *Server) Start() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.grpcServer.Serve(listener)
}

// StartAsync starts the gRPC server in a goroutine and returns immediately.
func (s *Server) StartAsync() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}

	go func() {
		_ = s.grpcServer.Serve(listener)
	}()

	return nil
}

func (s *Server) listen() (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	s.running = true
	return listener, nil
}

// Stop gracefully stops the gRPC server.
// It stops accepting new connections and waits for existing connections to complete.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.grpcServer.GracefulStop()
	s.running = false
}

// StopNow immediately stops the gRPC server without waiting for connections.
func (s *Server) StopNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.grpcServer.Stop()
	s.running = false
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the address the server is listening on.
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GetGRPCServer returns the underlying grpc.Server.
// This can be used to register additional services.
func (s *Server) GetGRPCServer() *grpc.Server {
	return s.grpcServer
}
