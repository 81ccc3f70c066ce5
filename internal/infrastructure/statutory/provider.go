// Package statutory supplies the government contribution tables and tax
// brackets to the calculation engine. Tables ship with the binary and can
// be overridden from a JSON file when a new schedule takes effect before
// a release carries it.
package statutory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// StaticProvider serves one fixed set of tables for the process lifetime.
type StaticProvider struct {
	tables payroll.StatutoryTables
}

// NewStaticProvider wraps an explicit table set.
func NewStaticProvider(tables payroll.StatutoryTables) *StaticProvider {
	return &StaticProvider{tables: tables}
}

// NewDefaultProvider serves the built-in schedules.
func NewDefaultProvider() *StaticProvider {
	return &StaticProvider{tables: payroll.DefaultStatutoryTables()}
}

// NewFileProvider loads a full table set from a JSON file. The file must
// carry every table; partial overrides are rejected by validation below.
func NewFileProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statutory: failed to read tables file: %w", err)
	}

	var tables payroll.StatutoryTables
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("statutory: malformed tables file: %w", err)
	}
	if len(tables.SSS.Brackets) == 0 || len(tables.Tax.Brackets) == 0 {
		return nil, fmt.Errorf("statutory: tables file %s is missing SSS or tax brackets", path)
	}

	return &StaticProvider{tables: tables}, nil
}

// Tables returns the schedules in force.
func (p *StaticProvider) Tables(ctx context.Context) (payroll.StatutoryTables, error) {
	return p.tables, nil
}
