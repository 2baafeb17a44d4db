package lookup

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Source yields the owner rows a lookup table is built from.
type Source interface {
	Owners(ctx context.Context) ([]Owner, error)
}

// Load builds a table from a source.
func Load(ctx context.Context, src Source) (Table, error) {
	owners, err := src.Owners(ctx)
	if err != nil {
		return nil, err
	}
	return Build(owners), nil
}

// =============================================================================
// SQL SOURCE
// =============================================================================

// SQLSource runs a query returning six columns, in order:
// account, owner name, address 1, address 2, city/state/zip, country.
// NULL columns are read as empty strings.
type SQLSource struct {
	DB    *sql.DB
	Query string
}

// Owners implements Source.
func (s *SQLSource) Owners(ctx context.Context) ([]Owner, error) {
	const op = "lookup.SQLSource.Owners"

	rows, err := s.DB.QueryContext(ctx, s.Query)
	if err != nil {
		return nil, types.E(types.ErrLookupSource, op, fmt.Errorf("failed to run owner query: %w", err))
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, types.E(types.ErrLookupSource, op, fmt.Errorf("failed to read columns: %w", err))
	}
	if len(cols) != 6 {
		return nil, types.E(types.ErrLookupSource, op,
			fmt.Errorf("owner query must return 6 columns (account, owner, address1, address2, csz, country), got %d", len(cols)))
	}

	var owners []Owner
	for rows.Next() {
		var acct, name, addr1, addr2, csz, country sql.NullString
		if err := rows.Scan(&acct, &name, &addr1, &addr2, &csz, &country); err != nil {
			return nil, types.E(types.ErrLookupSource, op, fmt.Errorf("failed to scan owner row %d: %w", len(owners)+1, err))
		}
		owners = append(owners, Owner{
			Account:      acct.String,
			Name:         name.String,
			Address1:     addr1.String,
			Address2:     addr2.String,
			CityStateZip: csz.String,
			Country:      country.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, types.E(types.ErrLookupSource, op, fmt.Errorf("failed to read owner rows: %w", err))
	}

	return owners, nil
}

// Open connects to the lookup database and checks the connection.
//
// PARAMETERS:
//   - driver: A registered database/sql driver name ("sqlserver", "postgres").
//   - dsn: The driver-specific connection string.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	const op = "lookup.Open"

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, types.E(types.ErrLookupSource, op, fmt.Errorf("failed to open %s connection: %w", driver, err))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, types.E(types.ErrLookupSource, op, fmt.Errorf("failed to connect to %s database: %w", driver, err))
	}
	return db, nil
}

// ReadQuery reads a SQL file and collapses it onto one line: each line is
// trimmed and the lines are joined with a single space.
func ReadQuery(path string) (string, error) {
	const op = "lookup.ReadQuery"

	f, err := os.Open(path)
	if err != nil {
		return "", types.E(types.ErrConfig, op, fmt.Errorf("failed to open SQL file: %w", err))
	}
	defer f.Close()

	var parts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts = append(parts, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return "", types.E(types.ErrConfig, op, fmt.Errorf("failed to read SQL file: %w", err))
	}

	return strings.Join(parts, " "), nil
}
