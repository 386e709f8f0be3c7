package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	if user.CurrentMode == "" {
		user.CurrentMode = model.ModeDating
	}

	query := `
		CREATE user CONTENT {
			email: $email,
			name: IF $name IS NOT NULL THEN $name ELSE NONE END,
			nickname: IF $nickname IS NOT NULL THEN $nickname ELSE NONE END,
			profile_image_url: IF $profile_image_url IS NOT NULL THEN $profile_image_url ELSE NONE END,
			oidc_subject: IF $oidc_subject IS NOT NULL THEN $oidc_subject ELSE NONE END,
			hash: IF $hash IS NOT NULL THEN $hash ELSE NONE END,
			role: $role,
			current_mode: $current_mode,
			login_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":             user.Email,
		"name":              nilIfEmpty(user.Name),
		"nickname":          nilIfEmpty(user.Nickname),
		"profile_image_url": nilIfEmpty(user.ProfileImageURL),
		"oidc_subject":      nilIfEmpty(user.OIDCSubject),
		"hash":              nilIfEmpty(user.Hash),
		"role":              string(user.Role),
		"current_mode":      string(user.CurrentMode),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := parseUserResult(result)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rid, ok := recordID("user", id)
	if !ok {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": rid})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE email = $email LIMIT 1`, map[string]interface{}{"email": email})
}

// GetByOIDCSubject retrieves a user by identity provider subject
func (r *UserRepository) GetByOIDCSubject(ctx context.Context, subject string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE oidc_subject = $sub LIMIT 1`, map[string]interface{}{"sub": subject})
}

func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseUserResult(result)
}

// Update writes the profile columns of user
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE type::record($id) SET
			name = IF $name IS NOT NULL THEN $name ELSE NONE END,
			nickname = IF $nickname IS NOT NULL THEN $nickname ELSE NONE END,
			profile_image_url = IF $profile_image_url IS NOT NULL THEN $profile_image_url ELSE NONE END,
			oidc_subject = IF $oidc_subject IS NOT NULL THEN $oidc_subject ELSE NONE END,
			current_mode = $current_mode,
			anniversary_date = IF $anniversary_date IS NOT NULL THEN $anniversary_date ELSE NONE END,
			wedding_date = IF $wedding_date IS NOT NULL THEN $wedding_date ELSE NONE END
	`
	vars := map[string]interface{}{
		"id":                user.ID,
		"name":              nilIfEmpty(user.Name),
		"nickname":          nilIfEmpty(user.Nickname),
		"profile_image_url": nilIfEmpty(user.ProfileImageURL),
		"oidc_subject":      nilIfEmpty(user.OIDCSubject),
		"current_mode":      string(user.CurrentMode),
		"anniversary_date":  nilIfEmpty(user.AnniversaryDate),
		"wedding_date":      nilIfEmpty(user.WeddingDate),
	}
	return r.db.Execute(ctx, query, vars)
}

// UpdateLogin stamps login_on
func (r *UserRepository) UpdateLogin(ctx context.Context, userID string) error {
	return r.db.Execute(ctx, `UPDATE type::record($id) SET login_on = time::now()`, map[string]interface{}{"id": userID})
}

// SetPassword stores a new bcrypt hash
func (r *UserRepository) SetPassword(ctx context.Context, userID, hash string) error {
	return r.db.Execute(ctx, `UPDATE type::record($id) SET hash = $hash`, map[string]interface{}{
		"id":   userID,
		"hash": hash,
	})
}

// SetRole updates a user's role
func (r *UserRepository) SetRole(ctx context.Context, userID string, role model.UserRole) error {
	return r.db.Execute(ctx, `UPDATE type::record($id) SET role = $role`, map[string]interface{}{
		"id":   userID,
		"role": string(role),
	})
}

// Link sets partner_id on both users and marks the invite accepted in one
// transaction. If either user gained a partner concurrently the whole
// transaction is cancelled and database.ErrDuplicate is returned.
func (r *UserRepository) Link(ctx context.Context, inviteID, inviterID, accepterID string) error {
	guard := `IF (SELECT VALUE partner_id FROM ONLY type::record($id)) != NONE { THROW "partner already exists" }`
	batch := database.NewAtomicBatch().
		Add(guard, map[string]interface{}{"id": inviterID}).
		Add(guard, map[string]interface{}{"id": accepterID}).
		Add(`UPDATE type::record($id) SET partner_id = $partner WHERE partner_id IS NONE`, map[string]interface{}{
			"id": inviterID, "partner": accepterID,
		}).
		Add(`UPDATE type::record($id) SET partner_id = $partner WHERE partner_id IS NONE`, map[string]interface{}{
			"id": accepterID, "partner": inviterID,
		}).
		Add(`UPDATE type::record($id) SET status = 'accepted', accepted_by = $by`, map[string]interface{}{
			"id": inviteID, "by": accepterID,
		}).
		Add(`UPDATE couple_invite SET status = 'cancelled' WHERE inviter_id IN $users AND status = 'pending' AND id != type::record($id)`, map[string]interface{}{
			"id": inviteID, "users": []string{inviterID, accepterID},
		})
	return batch.Execute(ctx, r.db)
}

// Unlink clears partner_id on both users
func (r *UserRepository) Unlink(ctx context.Context, userID, partnerID string) error {
	batch := database.NewAtomicBatch().
		Add(`UPDATE type::record($id) SET partner_id = NONE WHERE partner_id = $partner`, map[string]interface{}{
			"id": userID, "partner": partnerID,
		}).
		Add(`UPDATE type::record($id) SET partner_id = NONE WHERE partner_id = $partner`, map[string]interface{}{
			"id": partnerID, "partner": userID,
		})
	return batch.Execute(ctx, r.db)
}

// Delete removes the user and everything they own. The partner, if any,
// is unlinked but keeps their own rows.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	batch := database.NewAtomicBatch().
		Add(`UPDATE user SET partner_id = NONE WHERE partner_id = $user`, map[string]interface{}{"user": userID}).
		Add(`DELETE session WHERE user_id = $user`, map[string]interface{}{"user": userID}).
		Add(`DELETE couple_invite WHERE inviter_id = $user`, map[string]interface{}{"user": userID}).
		Add(`DELETE user_settings WHERE user_id = $user`, map[string]interface{}{"user": userID}).
		Add(`DELETE subscription WHERE user_id = $user`, map[string]interface{}{"user": userID})

	for _, table := range ScopedTables {
		batch.Add(`DELETE type::table($tb) WHERE user_id = $user`, map[string]interface{}{"tb": table, "user": userID})
	}

	// Likes are removed before posts so like_count on other posts stays right
	batch.Add(`UPDATE community_post SET like_count = math::max([like_count - 1, 0]) WHERE <string> id IN (SELECT VALUE post_id FROM community_like WHERE user_id = $user)`, map[string]interface{}{"user": userID}).
		Add(`DELETE community_like WHERE user_id = $user`, map[string]interface{}{"user": userID}).
		Add(`DELETE community_post WHERE user_id = $user`, map[string]interface{}{"user": userID}).
		Add(`DELETE type::record($user)`, map[string]interface{}{"user": userID})

	return batch.Execute(ctx, r.db)
}

func parseUserResult(result interface{}) (*model.User, error) {
	data, ok := normalize(result).(map[string]interface{})
	if !ok {
		return nil, database.ErrNotFound
	}

	user := &model.User{
		ID:              convertSurrealID(data["id"]),
		Email:           getString(data, "email"),
		Name:            getStringPtr(data, "name"),
		Nickname:        getStringPtr(data, "nickname"),
		ProfileImageURL: getStringPtr(data, "profile_image_url"),
		OIDCSubject:     getStringPtr(data, "oidc_subject"),
		Hash:            getStringPtr(data, "hash"),
		Role:            model.UserRole(getString(data, "role")),
		CurrentMode:     model.Mode(getString(data, "current_mode")),
		PartnerID:       getStringPtr(data, "partner_id"),
		AnniversaryDate: getStringPtr(data, "anniversary_date"),
		WeddingDate:     getStringPtr(data, "wedding_date"),
		CreatedOn:       parseTime(data["created_on"]),
		UpdatedOn:       parseTime(data["updated_on"]),
		LoginOn:         getTimePtr(data, "login_on"),
	}
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	if user.CurrentMode == "" {
		user.CurrentMode = model.ModeDating
	}
	return user, nil
}
