package terminology

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orprep/orprep/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type cptRepoPG struct{ pool *pgxpool.Pool }

func NewCPTRepoPG(pool *pgxpool.Pool) CPTRepository { return &cptRepoPG{pool: pool} }

func (r *cptRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cptCols = `code, description, COALESCE(category,''), is_favorite`

func scanCPT(row pgx.Row) (*CPTCode, error) {
	var c CPTCode
	if err := row.Scan(&c.Code, &c.Description, &c.Category, &c.IsFavorite); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *cptRepoPG) collect(rows pgx.Rows) ([]*CPTCode, error) {
	defer rows.Close()
	var out []*CPTCode
	for rows.Next() {
		c, err := scanCPT(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cptRepoPG) Search(ctx context.Context, query string, limit int) ([]*CPTCode, error) {
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cptCols+` FROM cpt_code
		 WHERE code ILIKE $1 OR description ILIKE $1
		 ORDER BY code LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("cpt search: %w", err)
	}
	return r.collect(rows)
}

func (r *cptRepoPG) GetByCode(ctx context.Context, code string) (*CPTCode, error) {
	return scanCPT(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cptCols+` FROM cpt_code WHERE code = $1`, code))
}

func (r *cptRepoPG) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT DISTINCT category FROM cpt_code WHERE category IS NOT NULL ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cptRepoPG) ListByCategory(ctx context.Context, category string, limit int) ([]*CPTCode, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cptCols+` FROM cpt_code WHERE category = $1 ORDER BY code LIMIT $2`,
		category, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *cptRepoPG) ListFavorites(ctx context.Context) ([]*CPTCode, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cptCols+` FROM cpt_code WHERE is_favorite ORDER BY code`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *cptRepoPG) SetFavorite(ctx context.Context, code string, favorite bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE cpt_code SET is_favorite = $2 WHERE code = $1`, code, favorite)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type usageRepoPG struct{ pool *pgxpool.Pool }

func NewUsageRepoPG(pool *pgxpool.Pool) UsageRepository { return &usageRepoPG{pool: pool} }

func (r *usageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *usageRepoPG) Increment(ctx context.Context, userEmail, itemType, itemValue string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO usage_stat (id, user_email, item_type, item_value, usage_count, first_used, last_used)
		VALUES ($1, $2, $3, $4, 1, NOW(), NOW())
		ON CONFLICT (user_email, item_type, item_value)
		DO UPDATE SET usage_count = usage_stat.usage_count + 1, last_used = NOW()`,
		uuid.New(), userEmail, itemType, itemValue)
	return err
}

func (r *usageRepoPG) TopForUser(ctx context.Context, userEmail, itemType string, limit int) ([]*UsageStat, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_email, item_type, item_value, usage_count, first_used, last_used
		FROM usage_stat
		WHERE user_email = $1 AND item_type = $2
		ORDER BY usage_count DESC, last_used DESC
		LIMIT $3`, userEmail, itemType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*UsageStat
	for rows.Next() {
		var s UsageStat
		if err := rows.Scan(&s.ID, &s.UserEmail, &s.ItemType, &s.ItemValue,
			&s.UsageCount, &s.FirstUsed, &s.LastUsed); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
