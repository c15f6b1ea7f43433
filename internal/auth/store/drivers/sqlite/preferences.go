package sqlite

import (
	"context"
	"database/sql"

	"github.com/paperbark/journal/internal/auth/domain"
)

type preferencesRepo struct {
	q querier
}

func (r *preferencesRepo) CreateDefaultPreferences(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, temperature_unit) VALUES (?, ?)`,
		userID, string(domain.UnitCelsius),
	)
	return mapConstraint(err)
}

func (r *preferencesRepo) GetPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	var p domain.Preferences
	var unit string
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, temperature_unit, created_at, updated_at
		 FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &unit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Preferences{}, mapNotFound(err)
	}
	p.TemperatureUnit = domain.TemperatureUnit(unit)
	return p, nil
}

func (r *preferencesRepo) UpdateTemperatureUnit(ctx context.Context, userID string, unit domain.TemperatureUnit) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE user_preferences SET temperature_unit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		string(unit), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
