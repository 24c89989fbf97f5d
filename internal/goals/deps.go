// Package goals implements the savings goal use cases: the reservation ledger
// that derives a goal's accumulated value, the goal lifecycle, and the usage
// ledger that tracks spending from concluded goals.
package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/service"
)

// TransactionFinder is the slice of the transaction repository the goal use cases need.
type TransactionFinder interface {
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
}

// Deps contains all dependencies required by the goal service.
type Deps struct {
	Goals        service.GoalRepository
	Reservations service.ReservationRepository
	Usages       service.GoalUsageRepository
	Transactions TransactionFinder
}

// DepsFrom wires every dependency to one repository set, typically a storage transaction.
func DepsFrom(repos service.Repositories) Deps {
	return Deps{
		Goals:        repos,
		Reservations: repos,
		Usages:       repos,
		Transactions: repos,
	}
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Goals == nil {
		return fmt.Errorf("goal repository dependency is required")
	}
	if d.Reservations == nil {
		return fmt.Errorf("reservation repository dependency is required")
	}
	if d.Usages == nil {
		return fmt.Errorf("goal usage repository dependency is required")
	}
	if d.Transactions == nil {
		return fmt.Errorf("transaction repository dependency is required")
	}
	return nil
}

// Config holds configuration options for the goal service.
type Config struct {
	// Now supplies the current time; it decides what "today" is for deadlines.
	Now func() time.Time
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Now: time.Now}
}

// Service runs the goal and reservation use cases against its repositories.
// It does not open or commit storage transactions; the caller owns that scope.
type Service struct {
	deps Deps
	now  func() time.Time
}

// New creates a goal service with the default configuration.
func New(deps Deps) (*Service, error) {
	return NewWithConfig(deps, DefaultConfig())
}

// NewWithConfig creates a goal service with custom configuration.
func NewWithConfig(deps Deps, config Config) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Service{
		deps: deps,
		now:  config.Now,
	}, nil
}
