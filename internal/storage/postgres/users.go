package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/supportdesk/support-portal/internal/domain"
)

const userColumns = `id, username, password, email, phone_number, is_agent, display_name, profile_photo_url`

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Email,
		&user.PhoneNumber,
		&user.IsAgent,
		&user.DisplayName,
		&user.ProfilePhotoURL,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) getUserWhere(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY id LIMIT 1`
	user, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUserWhere(ctx, "id=$1", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, "username=$1", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, "email=$1", email)
}

func (s *Store) CreateUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Checked up front so a rejected registration does not draw from the
	// id sequence; the unique constraints still catch concurrent races.
	var usernameTaken, emailTaken bool
	if err := tx.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM users WHERE username=$1),
               EXISTS (SELECT 1 FROM users WHERE email=$2)`,
		in.Username, in.Email,
	).Scan(&usernameTaken, &emailTaken); err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, domain.ErrUsernameTaken
	}
	if emailTaken {
		return nil, domain.ErrEmailTaken
	}

	var phone *string
	if in.PhoneNumber != nil && *in.PhoneNumber != "" {
		phone = in.PhoneNumber
	}

	const query = `
        INSERT INTO users (username, password, email, phone_number, is_agent, display_name, profile_photo_url)
        VALUES ($1, $2, $3, $4, FALSE, $5, NULL)
        RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRow(ctx, query,
		in.Username,
		in.Password,
		in.Email,
		phone,
		in.DisplayName,
	))
	if err != nil {
		return nil, mapUserConstraint(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapUserConstraint(err)
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	const query = `
        UPDATE users SET
            password          = COALESCE($2, password),
            email             = COALESCE($3, email),
            display_name      = COALESCE($4, display_name),
            phone_number      = CASE WHEN $5::text IS NULL THEN phone_number
                                     WHEN $5::text = '' THEN NULL
                                     ELSE $5::text END,
            profile_photo_url = COALESCE($6, profile_photo_url)
        WHERE id=$1
        RETURNING ` + userColumns
	user, err := scanUser(s.pool.QueryRow(ctx, query,
		id,
		patch.Password,
		patch.Email,
		patch.DisplayName,
		patch.PhoneNumber,
		patch.ProfilePhotoURL,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapUserConstraint(err)
	}
	return user, nil
}

func mapUserConstraint(err error) error {
	switch {
	case isUniqueViolation(err, usernameConstraint):
		return domain.ErrUsernameTaken
	case isUniqueViolation(err, emailConstraint):
		return domain.ErrEmailTaken
	default:
		return err
	}
}
