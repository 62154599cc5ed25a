package roster

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func rosterWhere(f ListFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	var args []interface{}
	if f.Hospital != "" {
		args = append(args, f.Hospital)
		where += fmt.Sprintf(" AND hospital = $%d", len(args))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		where += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	return where, args
}

const residentCols = `id, name, email, hospital, specialty, pgy_year, is_active, created_by, created_at`

func scanResident(row pgx.Row) (*Resident, error) {
	var m Resident
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Hospital, &m.Specialty,
		&m.PGYYear, &m.IsActive, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) CreateResident(ctx context.Context, m *Resident) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO resident (id, name, email, hospital, specialty, pgy_year, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		m.ID, m.Name, m.Email, m.Hospital, m.Specialty, m.PGYYear, m.IsActive, m.CreatedBy).
		Scan(&m.CreatedAt)
}

func (r *repoPG) GetResident(ctx context.Context, id uuid.UUID) (*Resident, error) {
	return scanResident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM resident WHERE id = $1`, id))
}

func (r *repoPG) UpdateResident(ctx context.Context, m *Resident) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE resident SET name=$2, email=$3, hospital=$4, specialty=$5, pgy_year=$6, is_active=$7
		WHERE id = $1`,
		m.ID, m.Name, m.Email, m.Hospital, m.Specialty, m.PGYYear, m.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteResident(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM resident WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListResidents(ctx context.Context, f ListFilter) ([]*Resident, error) {
	where, args := rosterWhere(f)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+residentCols+` FROM resident`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Resident
	for rows.Next() {
		m, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const attendingCols = `id, name, email, hospital, specialty, is_active, created_by, created_at`

func scanAttending(row pgx.Row) (*Attending, error) {
	var m Attending
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Hospital, &m.Specialty,
		&m.IsActive, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) CreateAttending(ctx context.Context, m *Attending) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO attending (id, name, email, hospital, specialty, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		m.ID, m.Name, m.Email, m.Hospital, m.Specialty, m.IsActive, m.CreatedBy).
		Scan(&m.CreatedAt)
}

func (r *repoPG) GetAttending(ctx context.Context, id uuid.UUID) (*Attending, error) {
	return scanAttending(r.conn(ctx).QueryRow(ctx,
		`SELECT `+attendingCols+` FROM attending WHERE id = $1`, id))
}

func (r *repoPG) UpdateAttending(ctx context.Context, m *Attending) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE attending SET name=$2, email=$3, hospital=$4, specialty=$5, is_active=$6
		WHERE id = $1`,
		m.ID, m.Name, m.Email, m.Hospital, m.Specialty, m.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteAttending(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM attending WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListAttendings(ctx context.Context, f ListFilter) ([]*Attending, error) {
	where, args := rosterWhere(f)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+attendingCols+` FROM attending`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Attending
	for rows.Next() {
		m, err := scanAttending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
