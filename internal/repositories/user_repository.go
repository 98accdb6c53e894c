package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"langswap/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

type OnboardingUpdate struct {
	FullName         string
	Bio              string
	NativeLanguage   string
	LearningLanguage string
	Location         string
	ProfilePic       string
}

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, id int64, update OnboardingUpdate) (*models.User, error)
	ListRecommended(ctx context.Context, userID int64) ([]models.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, bio, native_language, learning_language, location, profile_pic, is_onboarded, created_at`

func (r *userRepository) Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO users (email, password_hash, full_name, profile_pic)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns+`
`, email, passwordHash, fullName, profilePic).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CompleteOnboarding(ctx context.Context, id int64, update OnboardingUpdate) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `
UPDATE users
SET full_name=$2, bio=$3, native_language=$4, learning_language=$5, location=$6,
    profile_pic=COALESCE(NULLIF($7, ''), profile_pic), is_onboarded=TRUE
WHERE id=$1
RETURNING `+userColumns+`
`, id, update.FullName, update.Bio, update.NativeLanguage, update.LearningLanguage,
		update.Location, update.ProfilePic).StructScan(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRecommended returns onboarded users excluding the caller, the caller's
// friends, and anyone with a pending request to or from the caller.
func (r *userRepository) ListRecommended(ctx context.Context, userID int64) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
SELECT `+userColumns+`
FROM users u
WHERE u.id <> $1
  AND u.is_onboarded
  AND NOT EXISTS (
    SELECT 1 FROM friendships f WHERE f.user_id = $1 AND f.friend_id = u.id
  )
  AND NOT EXISTS (
    SELECT 1 FROM friend_requests fr
    WHERE fr.status = 'pending'
      AND ((fr.sender_id = $1 AND fr.recipient_id = u.id)
        OR (fr.sender_id = u.id AND fr.recipient_id = $1))
  )
ORDER BY u.created_at DESC
LIMIT 50
`, userID)
	return users, err
}
