package schedule

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

const scheduleCols = `id, patient_mrn, patient_name, procedure, staff,
	to_char(scheduled_date, 'YYYY-MM-DD'), scheduled_time, status, is_addon, priority,
	diagnosis, created_by, created_at, archived`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.PatientMRN, &s.PatientName, &s.Procedure, &s.Staff,
		&s.ScheduledDate, &s.ScheduledTime, &s.Status, &s.IsAddon, &s.Priority,
		&s.Diagnosis, &s.CreatedBy, &s.CreatedAt, &s.Archived)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO surgery_schedule (id, patient_mrn, patient_name, procedure, staff,
			scheduled_date, scheduled_time, status, is_addon, priority, diagnosis, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		s.ID, s.PatientMRN, s.PatientName, s.Procedure, s.Staff,
		s.ScheduledDate, s.ScheduledTime, s.Status, s.IsAddon, s.Priority, s.Diagnosis, s.CreatedBy).
		Scan(&s.CreatedAt)
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return scanSchedule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+scheduleCols+` FROM surgery_schedule WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Schedule) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE surgery_schedule SET patient_mrn=$2, patient_name=$3, procedure=$4, staff=$5,
			scheduled_date=$6, scheduled_time=$7, status=$8, is_addon=$9, priority=$10,
			diagnosis=$11, archived=$12
		WHERE id = $1`,
		s.ID, s.PatientMRN, s.PatientName, s.Procedure, s.Staff,
		s.ScheduledDate, s.ScheduledTime, s.Status, s.IsAddon, s.Priority,
		s.Diagnosis, s.Archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM surgery_schedule WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Schedule, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where += fmt.Sprintf(clause, len(args))
	}
	if f.PatientMRN != "" {
		add(" AND patient_mrn = $%d", f.PatientMRN)
	}
	if f.Status != "" {
		add(" AND status = $%d", f.Status)
	}
	if f.Archived != nil {
		add(" AND archived = $%d", *f.Archived)
	}
	if f.From != "" {
		add(" AND scheduled_date >= $%d", f.From)
	}
	if f.To != "" {
		add(" AND scheduled_date <= $%d", f.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM surgery_schedule`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + scheduleCols + ` FROM surgery_schedule` + where +
		fmt.Sprintf(` ORDER BY scheduled_date, scheduled_time LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repoPG) NextForPatient(ctx context.Context, mrn, onOrAfter string) (*Schedule, error) {
	return scanSchedule(r.conn(ctx).QueryRow(ctx, `
		SELECT `+scheduleCols+` FROM surgery_schedule
		WHERE patient_mrn = $1 AND NOT archived AND status = $2 AND scheduled_date >= $3
		ORDER BY scheduled_date, scheduled_time
		LIMIT 1`, mrn, StatusScheduled, onOrAfter))
}

func (r *repoPG) ArchiveByMRN(ctx context.Context, mrn string) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE surgery_schedule SET archived = TRUE WHERE patient_mrn = $1 AND NOT archived`, mrn)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
