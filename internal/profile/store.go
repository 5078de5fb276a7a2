package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JaimeStill/stark/pkg/repository"
)

const selectSQL = `
	SELECT id, name, first_name, last_name, personal_number, specialty, goals_version,
		start_date, home_clinic, locked, previous_names, updated_at
	FROM profile
	WHERE id = $1`

const putSQL = `
	INSERT INTO profile(id, name, first_name, last_name, personal_number, specialty, goals_version, start_date, home_clinic, locked, previous_names)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		first_name = excluded.first_name,
		last_name = excluded.last_name,
		personal_number = excluded.personal_number,
		specialty = excluded.specialty,
		goals_version = excluded.goals_version,
		start_date = excluded.start_date,
		home_clinic = excluded.home_clinic,
		locked = excluded.locked,
		previous_names = excluded.previous_names,
		updated_at = CURRENT_TIMESTAMP`

func scanProfile(s repository.Scanner) (Profile, error) {
	var (
		p     Profile
		names string
	)
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.FirstName,
		&p.LastName,
		&p.PersonalNumber,
		&p.Specialty,
		&p.GoalsVersion,
		&p.StartDate,
		&p.HomeClinic,
		&p.Locked,
		&names,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	if names != "" {
		if err := json.Unmarshal([]byte(names), &p.PreviousNames); err != nil {
			return p, fmt.Errorf("decode previous names: %w", err)
		}
	}
	return p, nil
}

// Get reads the stored profile. It returns nil without error when none
// has been saved.
func Get(ctx context.Context, q repository.Querier) (*Profile, error) {
	p, err := repository.QueryOne(ctx, q, selectSQL, []any{ID}, scanProfile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Put normalizes p and writes it as the singleton profile.
func Put(ctx context.Context, e repository.Executor, p *Profile) error {
	p.Normalize()

	names := p.PreviousNames
	if names == nil {
		names = []string{}
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode previous names: %w", err)
	}

	return repository.Exec(
		ctx, e, putSQL,
		p.ID, p.Name, p.FirstName, p.LastName, p.PersonalNumber, p.Specialty,
		p.GoalsVersion, p.StartDate, p.HomeClinic, p.Locked, string(encoded),
	)
}

// Clear removes the stored profile.
func Clear(ctx context.Context, e repository.Executor) error {
	return repository.Exec(ctx, e, "DELETE FROM profile")
}
