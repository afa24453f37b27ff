package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auctionhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, p models.Profile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (profile_id, email, role, plan)
		VALUES (?, ?, ?, ?)
	`, p.ProfileID, p.Email, p.Role, p.Plan)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.getOne(ctx, `
		SELECT profile_id, email, role, plan, created_at
		FROM profiles WHERE profile_id = ?
	`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, `
		SELECT profile_id, email, role, plan, created_at
		FROM profiles WHERE email = ?
	`, email)
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (*models.Profile, error) {
	row := r.DB.QueryRowContext(ctx, query, arg)

	var (
		p       models.Profile
		created time.Time
	)
	if err := row.Scan(&p.ProfileID, &p.Email, &p.Role, &p.Plan, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.CreatedAt = created
	return &p, nil
}

func (r *Repo) UpdateEmail(ctx context.Context, id, email string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE profiles SET email = ? WHERE profile_id = ?
	`, email, id)
	if err != nil {
		return false, fmt.Errorf("update profile email: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) UpdatePlan(ctx context.Context, id, plan string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE profiles SET plan = ? WHERE profile_id = ?
	`, plan, id)
	if err != nil {
		return false, fmt.Errorf("update profile plan: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) InsertPayment(ctx context.Context, pay models.Payment) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO payments (payment_id, profile_id, amount)
		VALUES (?, ?, ?)
	`, pay.PaymentID, pay.ProfileID, pay.Amount)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}
