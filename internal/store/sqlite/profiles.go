package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	"github.com/linkcardapp/linkcard-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `user_id, full_name, bio, avatar_url, theme_config, handle, published_at, created_at, updated_at`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.ProfileRecord.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.ProfileRecord, error) {
	var p domain.ProfileRecord

	var (
		avatarURL   sql.NullString
		themeConfig sql.NullString
		handle      sql.NullString
		publishedAt sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&p.UserID,
		&p.FullName,
		&p.Bio,
		&avatarURL,
		&themeConfig,
		&handle,
		&publishedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.AvatarURL = avatarURL.String
	if themeConfig.Valid {
		p.ThemeConfig = []byte(themeConfig.String)
	}
	p.Handle = handle.String

	p.PublishedAt, err = parseNullableTime(publishedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetProfile retrieves a saved profile by user ID.
// Returns store.ErrNotFound if no profile has been saved.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.ProfileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfileByHandle retrieves a published profile by its public handle.
// Returns store.ErrNotFound if no published profile has that handle.
func (s *Store) GetProfileByHandle(ctx context.Context, handle string) (*domain.ProfileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE handle = ?`, handle)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SaveProfile creates or replaces a saved profile.
// Uses an upsert so repeated saves only rewrite the mutable columns;
// created_at is preserved on conflict.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.ProfileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, full_name, bio, avatar_url, theme_config, handle, published_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			full_name    = excluded.full_name,
			bio          = excluded.bio,
			avatar_url   = excluded.avatar_url,
			theme_config = excluded.theme_config,
			handle       = excluded.handle,
			published_at = excluded.published_at,
			updated_at   = excluded.updated_at`,
		profile.UserID,
		profile.FullName,
		profile.Bio,
		nullString(profile.AvatarURL),
		nullString(string(profile.ThemeConfig)),
		nullString(profile.Handle),
		nullTimeString(profile.PublishedAt),
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
	)
	return err
}

// DeleteProfile deletes a saved profile by user ID.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) DeleteProfile(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListPublishedProfiles returns all profiles with a public handle.
// Used to rebuild the search index at startup.
func (s *Store) ListPublishedProfiles(ctx context.Context) ([]*domain.ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE handle IS NOT NULL AND published_at IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.ProfileRecord
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
