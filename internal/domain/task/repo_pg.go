package task

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

const taskCols = `id, patient_mrn, description, urgency, assigned_to, assigned_to_email,
	COALESCE(to_char(due_date, 'YYYY-MM-DD'), ''), status, completed, created_by, created_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.PatientMRN, &t.Description, &t.Urgency, &t.AssignedTo,
		&t.AssignedToEmail, &t.DueDate, &t.Status, &t.Completed, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) Create(ctx context.Context, t *Task) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO task (id, patient_mrn, description, urgency, assigned_to, assigned_to_email,
			due_date, status, completed, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,'')::date,$8,$9,$10)
		RETURNING created_at`,
		t.ID, t.PatientMRN, t.Description, t.Urgency, t.AssignedTo, t.AssignedToEmail,
		t.DueDate, t.Status, t.Completed, t.CreatedBy).
		Scan(&t.CreatedAt)
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(r.conn(ctx).QueryRow(ctx,
		`SELECT `+taskCols+` FROM task WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *Task) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE task SET patient_mrn=$2, description=$3, urgency=$4, assigned_to=$5,
			assigned_to_email=$6, due_date=NULLIF($7,'')::date, status=$8, completed=$9
		WHERE id = $1`,
		t.ID, t.PatientMRN, t.Description, t.Urgency, t.AssignedTo,
		t.AssignedToEmail, t.DueDate, t.Status, t.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Task, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where += fmt.Sprintf(clause, len(args))
	}
	if f.PatientMRN != "" {
		add(" AND patient_mrn = $%d", f.PatientMRN)
	}
	if f.AssignedToEmail != "" {
		add(" AND assigned_to_email = $%d", f.AssignedToEmail)
	}
	if f.Completed != nil {
		add(" AND completed = $%d", *f.Completed)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM task`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + taskCols + ` FROM task` + where +
		fmt.Sprintf(` ORDER BY due_date NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}
