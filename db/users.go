package db

import (
	"database/sql"
	"fmt"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
)

// UpsertUser inserts a user profile or refreshes it by username.
func (rdb *RequestsDB) UpsertUser(user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := rdb.DB.QueryRow(`
		INSERT INTO users (id, username, full_name, email, avatar_url,
			organization, twitter, staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (username) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			organization = EXCLUDED.organization,
			twitter = EXCLUDED.twitter,
			staff = EXCLUDED.staff
		RETURNING id`,
		user.ID, user.Username, user.FullName, user.Email, user.AvatarURL,
		user.Organization, user.Twitter, user.Staff).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user profile by username.
func (rdb *RequestsDB) GetUser(username string) (*models.User, error) {
	row := rdb.DB.QueryRow(`SELECT id, username, full_name, email,
		avatar_url, organization, twitter, staff
		FROM users WHERE username = $1`, username)

	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.AvatarURL,
		&u.Organization, &u.Twitter, &u.Staff)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return &u, nil
}
