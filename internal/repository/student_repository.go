package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
)

type StudentRepo struct{ db *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

const studentColumns = "id, first_name, last_name, email, address_city, address_state, eye_color"

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email,
		&s.Address.City, &s.Address.State, &s.EyeColor)
	return s, err
}

// List returns all students ordered by id.  The result is never nil so
// an empty collection serializes as [].
func (r *StudentRepo) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+studentColumns+" FROM students ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches one student, returning ErrNotFound when absent.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (model.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, ErrNotFound
	}
	return s, err
}

// Create inserts a student and populates s.ID.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (first_name, last_name, email, address_city, address_state, eye_color)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.FirstName, s.LastName, s.Email, s.Address.City, s.Address.State, s.EyeColor)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update merges the provided fields into an existing student and
// returns the updated record.  ErrNotFound when the id is unknown.
// RowsAffected cannot distinguish "missing" from "unchanged" in MySQL,
// so existence is checked up front.
func (r *StudentRepo) Update(ctx context.Context, id uint64, p model.StudentPatch) (model.Student, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Student{}, err
	}

	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+" = ?")
			args = append(args, *v)
		}
	}
	add("first_name", p.FirstName)
	add("last_name", p.LastName)
	add("email", p.Email)
	add("address_city", p.City)
	add("address_state", p.State)
	add("eye_color", p.EyeColor)

	if len(set) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE students SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
			return model.Student{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// DeleteAll removes every student.  Used by the seed command before a
// bulk re-import; there is no HTTP route for student deletion.
func (r *StudentRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM students")
	return err
}
