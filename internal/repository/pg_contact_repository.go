package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/folio/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepository defines the persistence interface for contact submissions.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	Save(ctx context.Context, c *model.ContactSubmission) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)
	GetByID(ctx context.Context, id string) (*model.ContactSubmission, error)
	Update(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error)
	MarkEmailSent(ctx context.Context, id string) error
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

var _ ContactRepository = (*PgContactRepository)(nil)

const contactSelectCols = `id, name, email, COALESCE(company, ''), COALESCE(service, ''),
	COALESCE(budget, ''), COALESCE(timeline, ''), message, status, COALESCE(notes, ''),
	email_sent, submitted_at, updated_at`

func scanContact(scan func(...any) error) (*model.ContactSubmission, error) {
	c := &model.ContactSubmission{}
	err := scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Service,
		&c.Budget, &c.Timeline, &c.Message, &c.Status, &c.Notes,
		&c.EmailSent, &c.SubmittedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// Save inserts a new contact_submissions row. ID and timestamps set by the
// caller are written as-is.
func (r *PgContactRepository) Save(ctx context.Context, c *model.ContactSubmission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contact_submissions
		 (id, name, email, company, service, budget, timeline, message, status, notes, email_sent, submitted_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, NULLIF($10, ''), $11, $12, $13)`,
		c.ID, c.Name, c.Email, c.Company, c.Service, c.Budget, c.Timeline,
		c.Message, c.Status, c.Notes, c.EmailSent, c.SubmittedAt, c.UpdatedAt,
	)
	return err
}

// List returns submissions filtered by status and paginated by limit/offset, newest first.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	var conditions []string
	var args []any

	status := strings.TrimSpace(opts.Status)
	if status != "" && status != "all" {
		args = append(args, status)
		conditions = append(conditions, "status = $1")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, opts.Limit, opts.Offset)

	query := `SELECT ` + contactSelectCols + ` FROM contact_submissions ` + where +
		` ORDER BY submitted_at DESC LIMIT $` + limitArg + ` OFFSET $` + offsetArg

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.ContactSubmission
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetByID returns one submission or ErrNotFound.
func (r *PgContactRepository) GetByID(ctx context.Context, id string) (*model.ContactSubmission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contactSelectCols+` FROM contact_submissions WHERE id = $1`, id)
	return scanContact(row.Scan)
}

// Update applies the non-nil fields of patch and returns the updated row.
func (r *PgContactRepository) Update(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE contact_submissions
		 SET status = COALESCE($2, status),
		     notes = COALESCE($3, notes),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+contactSelectCols,
		id, status, patch.Notes)
	return scanContact(row.Scan)
}

// MarkEmailSent records that the owner notification for a submission was delivered.
func (r *PgContactRepository) MarkEmailSent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_submissions SET email_sent = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
