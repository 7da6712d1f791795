package labelrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable holds one row per (field, label) with its fitted code.
const DefaultTable = "label_classes"

// PostgresRepository reads fitted label encoder classes written by the training pipeline.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool, table string) *PostgresRepository {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return &PostgresRepository{pool: pool, table: table}
}

type classRow struct {
	Field string
	Label string
	Code  int
}

// LoadClasses returns field -> classes, where each class sits at its code.
func (r *PostgresRepository) LoadClasses(ctx context.Context) (map[string][]string, error) {
	query := fmt.Sprintf(`
		SELECT field, label, code
		FROM %s
		ORDER BY field, code
	`, r.tableIdentifier())
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (classRow, error) {
		var c classRow
		err := row.Scan(&c.Field, &c.Label, &c.Code)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	return assembleClasses(collected)
}

// tableIdentifier quotes each part of a possibly schema-qualified table name.
func (r *PostgresRepository) tableIdentifier() string {
	return pgx.Identifier(strings.Split(r.table, ".")).Sanitize()
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func assembleClasses(rows []classRow) (map[string][]string, error) {
	byField := make(map[string][]classRow)
	for _, row := range rows {
		byField[row.Field] = append(byField[row.Field], row)
	}
	out := make(map[string][]string, len(byField))
	for field, entries := range byField {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
		classes := make([]string, len(entries))
		for i, entry := range entries {
			if entry.Code != i {
				return nil, fmt.Errorf("field %q: codes must be contiguous from 0, found %d at position %d", field, entry.Code, i)
			}
			classes[i] = entry.Label
		}
		out[field] = classes
	}
	return out, nil
}
