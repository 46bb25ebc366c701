package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/reminders/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type ReminderRepo struct {
	DB *sql.DB
}

func NewReminderRepo(db *sql.DB) *ReminderRepo {
	return &ReminderRepo{DB: db}
}

// ========================
// CREATE REMINDER
// ========================

func (r *ReminderRepo) Create(ctx context.Context, title, description string) (models.Reminder, error) {
	reminder := models.Reminder{Title: title, Description: description}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO reminders (title, description)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		title, description,
	).Scan(&reminder.ID, &reminder.CreatedAt)
	if err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

// ========================
// GET REMINDER BY ID
// ========================

func (r *ReminderRepo) GetByID(ctx context.Context, id int) (models.Reminder, error) {
	var reminder models.Reminder
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, description, created_at
		 FROM reminders
		 WHERE id = $1`,
		id,
	).Scan(
		&reminder.ID,
		&reminder.Title,
		&reminder.Description,
		&reminder.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, ErrNotFound
	}
	return reminder, err
}

// ========================
// LIST ALL REMINDERS
// ========================

func (r *ReminderRepo) List(ctx context.Context) ([]models.Reminder, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, description, created_at FROM reminders ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.Title, &rem.Description, &rem.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// ========================
// COUNT REMINDERS
// ========================

func (r *ReminderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders`).Scan(&n)
	return n, err
}
