package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

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

const patientCols = `id, mrn, name, dob, diagnosis, procedures, procedure_code, attending, status,
	prep_checklist, completed_at, created_by, created_at, updated_by, updated_at,
	archived, archived_at, archived_by, archived_reason`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var checklist []byte
	err := row.Scan(&p.ID, &p.MRN, &p.Name, &p.DOB, &p.Diagnosis, &p.Procedures, &p.ProcedureCode,
		&p.Attending, &p.Status, &checklist, &p.CompletedAt, &p.CreatedBy, &p.CreatedAt,
		&p.UpdatedBy, &p.UpdatedAt, &p.Archived, &p.ArchivedAt, &p.ArchivedBy, &p.ArchivedReason)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(checklist) > 0 {
		if err := json.Unmarshal(checklist, &p.PrepChecklist); err != nil {
			return nil, fmt.Errorf("decode prep_checklist: %w", err)
		}
	}
	if p.PrepChecklist == nil {
		p.PrepChecklist = map[string]bool{}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	checklist, err := json.Marshal(p.PrepChecklist)
	if err != nil {
		return fmt.Errorf("encode prep_checklist: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, mrn, name, dob, diagnosis, procedures, procedure_code, attending,
			status, prep_checklist, created_by, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)`,
		p.ID, p.MRN, p.Name, p.DOB, p.Diagnosis, p.Procedures, p.ProcedureCode, p.Attending,
		p.Status, checklist, p.CreatedBy)
	return err
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	checklist, err := json.Marshal(p.PrepChecklist)
	if err != nil {
		return fmt.Errorf("encode prep_checklist: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET name=$2, dob=$3, diagnosis=$4, procedures=$5, procedure_code=$6,
			attending=$7, status=$8, prep_checklist=$9, completed_at=$10, updated_by=$11,
			archived=$12, archived_at=$13, archived_by=$14, archived_reason=$15, updated_at=NOW()
		WHERE mrn = $1`,
		p.MRN, p.Name, p.DOB, p.Diagnosis, p.Procedures, p.ProcedureCode, p.Attending,
		p.Status, checklist, p.CompletedAt, p.UpdatedBy,
		p.Archived, p.ArchivedAt, p.ArchivedBy, p.ArchivedReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, mrn string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE mrn = $1`, mrn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(clause string, v interface{}) {
		n++
		where += fmt.Sprintf(" AND "+clause, n)
		args = append(args, v)
	}

	if f.Status != "" {
		add(`status = $%d`, f.Status)
	}
	if f.Archived != nil {
		add(`archived = $%d`, *f.Archived)
	}
	if f.Attending != "" {
		add(`attending = $%d`, f.Attending)
	}
	if f.Search != "" {
		n++
		where += fmt.Sprintf(" AND (name ILIKE '%%' || $%d || '%%' OR mrn ILIKE '%%' || $%d || '%%')", n, n)
		args = append(args, f.Search)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM patient %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		patientCols, where, n+1, n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE status = $1 AND archived = FALSE AND completed_at IS NOT NULL AND completed_at <= $2
		ORDER BY completed_at`, StatusCompleted, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// -- Comments --

func (r *repoPG) AddComment(ctx context.Context, c *Comment) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_comment (id, patient_id, body, created_by, created_by_name)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		c.ID, c.PatientID, c.Body, c.CreatedBy, c.CreatedByName).Scan(&c.CreatedAt)
}

func (r *repoPG) ListComments(ctx context.Context, patientID uuid.UUID) ([]*Comment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, body, created_by, created_by_name, created_at
		FROM patient_comment WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PatientID, &c.Body, &c.CreatedBy, &c.CreatedByName, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// -- Activity log --

func (r *repoPG) AddActivity(ctx context.Context, a *Activity) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_activity (id, patient_id, action, actor, details)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		a.ID, a.PatientID, a.Action, a.Actor, a.Details).Scan(&a.CreatedAt)
}

func (r *repoPG) ListActivity(ctx context.Context, patientID uuid.UUID, limit int) ([]*Activity, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, action, actor, details, created_at
		FROM patient_activity WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2`,
		patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Action, &a.Actor, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

// -- Documents --

func (r *repoPG) UpsertDocument(ctx context.Context, d *Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_document (id, patient_id, kind, document_date, file_name, note, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (patient_id, kind) DO UPDATE SET
			document_date = EXCLUDED.document_date,
			file_name = EXCLUDED.file_name,
			note = EXCLUDED.note,
			uploaded_by = EXCLUDED.uploaded_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		d.ID, d.PatientID, d.Kind, d.DocumentDate, d.FileName, d.Note, d.UploadedBy).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *repoPG) ListDocuments(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, kind, COALESCE(to_char(document_date, 'YYYY-MM-DD'), ''),
			file_name, note, uploaded_by, created_at, updated_at
		FROM patient_document WHERE patient_id = $1 ORDER BY kind`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.PatientID, &d.Kind, &d.DocumentDate, &d.FileName, &d.Note,
			&d.UploadedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
