// Package importer turns CSV and OFX bank statements into PENDING
// transactions and manages saved CSV column mappings.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/ofx"
	"github.com/Veraticus/nest-egg/internal/service"
)

// Supported file extensions.
const (
	ExtCSV = ".csv"
	ExtOFX = ".ofx"
)

// Deps contains all dependencies required by the importer.
type Deps struct {
	Transactions service.TransactionRepository
	Mappings     service.CSVMappingRepository
}

// DepsFrom wires every dependency to one repository set.
func DepsFrom(repos service.Repositories) Deps {
	return Deps{Transactions: repos, Mappings: repos}
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Transactions == nil {
		return fmt.Errorf("transaction repository dependency is required")
	}
	if d.Mappings == nil {
		return fmt.Errorf("csv mapping repository dependency is required")
	}
	return nil
}

// Config holds configuration options for the importer.
type Config struct {
	Now func() time.Time
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Now: time.Now}
}

// Service imports statements. The caller owns the storage transaction, so a
// failing file leaves nothing behind once the caller rolls back.
type Service struct {
	deps   Deps
	parser *ofx.Parser
	now    func() time.Time
}

// New creates an importer with the default configuration.
func New(deps Deps) (*Service, error) {
	return NewWithConfig(deps, DefaultConfig())
}

// NewWithConfig creates an importer with custom configuration.
func NewWithConfig(deps Deps, config Config) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Service{deps: deps, parser: ofx.NewParser(), now: config.Now}, nil
}

// Options tune CSV imports; OFX files ignore them.
type Options struct {
	// Columns names the date, value and description columns explicitly.
	Columns *ColumnMapping
	// MappingID selects a saved mapping and overrides Columns.
	MappingID string
	// NoHeader treats the first line as data.
	NoHeader bool
}

// Result reports what an import stored.
type Result struct {
	FileName string
	Imported int
}

// Import parses a statement and stores every entry as a PENDING transaction.
// The file kind comes from the file name's extension.
func (s *Service) Import(ctx context.Context, ownerID, fileName string, data []byte, opts Options) (*Result, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, common.NewValidationError("no file was sent")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ExtCSV && ext != ExtOFX {
		return nil, common.NewValidationError("invalid file format, use CSV or OFX")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, common.NewValidationError("empty file, no transactions found")
	}

	var txns []model.Transaction
	var err error
	if ext == ExtCSV {
		txns, err = s.importCSV(ctx, ownerID, data, opts)
	} else {
		txns, err = s.importOFX(ctx, ownerID, data)
	}
	if err != nil {
		common.LogError(ctx, err, "Import failed", common.Fields{"file": fileName})
		return nil, err
	}
	if len(txns) == 0 {
		return nil, common.NewValidationError("no valid transactions found in the uploaded file")
	}

	if err := s.deps.Transactions.SaveTransactions(ctx, txns); err != nil {
		return nil, fmt.Errorf("failed to save imported transactions: %w", err)
	}

	common.LogInfo(ctx, "Imported statement", common.Fields{
		"file":     fileName,
		"format":   strings.TrimPrefix(ext, "."),
		"imported": len(txns),
	})
	return &Result{FileName: fileName, Imported: len(txns)}, nil
}

func (s *Service) importCSV(ctx context.Context, ownerID string, data []byte, opts Options) ([]model.Transaction, error) {
	columns, noHeader := opts.Columns, opts.NoHeader
	if opts.MappingID != "" {
		saved, err := s.deps.Mappings.GetCSVMappingByID(ctx, opts.MappingID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to load csv mapping: %w", err)
		}
		if err != nil || saved.OwnerID != ownerID {
			return nil, common.NewValidationError("mapping not found for this user")
		}
		columns = &ColumnMapping{
			Date:        saved.DateColumn,
			Value:       saved.ValueColumn,
			Description: saved.DescriptionColumn,
		}
		noHeader = isHeaderless(*columns)
	}

	rows, err := parseCSV(data, columns, noHeader)
	if err != nil {
		return nil, err
	}

	txns := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		txn, err := r.toTransaction(ownerID)
		if err != nil {
			return nil, common.NewValidationError("invalid CSV file at line %d: %s", r.line, common.UserMessage(err))
		}
		txns = append(txns, *txn)
	}
	return txns, nil
}

func (s *Service) importOFX(ctx context.Context, ownerID string, data []byte) ([]model.Transaction, error) {
	entries, err := s.parser.ParseFile(ctx, bytes.NewReader(data))
	if errors.Is(err, ofx.ErrNoTransactions) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewUserError("invalid OFX file", fmt.Errorf("%w: %w", common.ErrValidation, err))
	}

	txns := make([]model.Transaction, 0, len(entries))
	for _, e := range entries {
		kind := model.KindIncome
		value := e.Amount
		if value < 0 {
			kind, value = model.KindExpense, -value
		}
		txn, err := model.NewTransaction(ownerID, value, kind, e.Date, e.Description, "", "")
		if err != nil {
			common.LogError(ctx, err, "Skipping OFX entry", common.Fields{"fitid": e.FITID})
			continue
		}
		txns = append(txns, *txn)
	}
	return txns, nil
}

// SaveMapping stores a named CSV column layout. Names are unique per owner.
func (s *Service) SaveMapping(ctx context.Context, ownerID, name string, columns ColumnMapping) (*model.CSVMapping, error) {
	mapping, err := model.NewCSVMapping(ownerID, name, columns.Date, columns.Value, columns.Description, s.now())
	if err != nil {
		return nil, err
	}

	_, err = s.deps.Mappings.GetCSVMappingByName(ctx, ownerID, mapping.Name)
	switch {
	case err == nil:
		return nil, common.NewValidationError("a mapping named %q already exists", mapping.Name)
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to check mapping name: %w", err)
	}

	if err := s.deps.Mappings.AddCSVMapping(ctx, mapping); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return nil, common.NewValidationError("a mapping named %q already exists", mapping.Name)
		}
		return nil, fmt.Errorf("failed to save csv mapping: %w", err)
	}

	common.LogInfo(ctx, "Saved CSV mapping", common.Fields{"mapping_id": mapping.ID, "name": mapping.Name})
	return mapping, nil
}

// ListMappings returns the owner's saved CSV mappings.
func (s *Service) ListMappings(ctx context.Context, ownerID string) ([]model.CSVMapping, error) {
	mappings, err := s.deps.Mappings.GetCSVMappings(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list csv mappings: %w", err)
	}
	if mappings == nil {
		mappings = []model.CSVMapping{}
	}
	return mappings, nil
}
