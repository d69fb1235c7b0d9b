package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/valyala/fasttemplate"
)

// DefaultTable is the table SQL reads from when none is
// given.
const DefaultTable = "templates"

const queryTemplate = "SELECT content FROM {table} WHERE path = ?"

// SQL serves templates stored in a database table with a
// path column holding local paths and a content column holding
// template text.
type SQL struct {
	db    *sql.DB
	query string
}

// NewSQL returns a loader reading from table. An empty table
// means DefaultTable. The table name is trusted configuration
// and is not quoted.
func NewSQL(db *sql.DB, table string) *SQL {
	if table == "" {
		table = DefaultTable
	}

	return &SQL{
		db: db,
		query: fasttemplate.ExecuteStringStd(
			queryTemplate, "{", "}", map[string]any{"table": table},
		),
	}
}

// Load queries the row for localPath.
func (sl *SQL) Load(
	ctx context.Context,
	localPath string,
) (string, error) {
	const errCtx = "loading from database"

	local, err := Clean(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, localPath, err)
	}

	var content string

	err = sl.db.QueryRowContext(ctx, sl.query, local).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %s: %w", errCtx, local, ErrNotFound)
	}

	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, local, err)
	}

	return content, nil
}
