package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
)

type DeviceRepo struct{ db *sql.DB }

func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{db: db} }

// deviceSelect resolves the assigned student at read time.  The LEFT
// JOIN yields NULLs both for unassigned devices and for assignments
// whose student has since been deleted; either way the response carries
// assignedTo: null while the stored id is retained.
const deviceSelect = `SELECT d.id, d.name, d.type, d.status, d.created_at, d.updated_at,
	s.id, s.first_name, s.last_name, s.email
	FROM devices d
	LEFT JOIN students s ON s.id = d.assigned_to`

func scanDevice(row interface{ Scan(...any) error }) (model.Device, error) {
	var (
		d         model.Device
		studentID sql.NullInt64
		first     sql.NullString
		last      sql.NullString
		email     sql.NullString
	)
	err := row.Scan(&d.ID, &d.Name, &d.Type, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&studentID, &first, &last, &email)
	if err != nil {
		return model.Device{}, err
	}
	if studentID.Valid {
		d.AssignedTo = &model.AssignedStudent{
			ID:        uint64(studentID.Int64),
			FirstName: first.String,
			LastName:  last.String,
			Email:     email.String,
		}
	}
	return d, nil
}

// List returns all devices with their assigned-student projection.
func (r *DeviceRepo) List(ctx context.Context) ([]model.Device, error) {
	rows, err := r.db.QueryContext(ctx, deviceSelect+" ORDER BY d.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID fetches one device, returning ErrNotFound when absent.
func (r *DeviceRepo) GetByID(ctx context.Context, id uint64) (model.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, deviceSelect+" WHERE d.id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Device{}, ErrNotFound
	}
	return d, err
}

// Create inserts a device and returns the stored record with its
// assignment resolved.  assignedTo is not validated against the
// students table; it is a weak reference by design.
func (r *DeviceRepo) Create(ctx context.Context, name, deviceType, status string, assignedTo *uint64) (model.Device, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO devices (name, type, status, assigned_to) VALUES (?, ?, ?, ?)",
		name, deviceType, status, assignedTo)
	if err != nil {
		return model.Device{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Device{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update merges the provided fields into an existing device and returns
// the updated record.  ErrNotFound when the id is unknown.
func (r *DeviceRepo) Update(ctx context.Context, id uint64, p model.DevicePatch) (model.Device, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Device{}, err
	}

	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", p.Name)
	add("type", p.Type)
	add("status", p.Status)
	switch {
	case p.ClearAssigned:
		set = append(set, "assigned_to = NULL")
	case p.AssignedTo != nil:
		set = append(set, "assigned_to = ?")
		args = append(args, *p.AssignedTo)
	}

	if len(set) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE devices SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
			return model.Device{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a device, returning ErrNotFound when absent.
func (r *DeviceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
