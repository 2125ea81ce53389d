package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/models"
	"gorm.io/gorm"
)

// Store wraps the database and translates constraint violations into the
// application error taxonomy. Callers never see raw driver errors.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUserWithProfile inserts the user and its profile in one
// transaction. Either both rows exist afterwards or neither does.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.ID = uuid.New()
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	return translate(err, "User already exists with this email")
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

// DeleteUser removes the user row. Sessions, accounts, the profile and
// chat messages go with it via ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return translate(res.Error, "Failed to delete user")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}
	return nil
}

func (s *Store) UpdateUserImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("image", imageURL)
	if res.Error != nil {
		return translate(res.Error, "Failed to update user image")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "User not found")
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(session).Error, "Failed to create session")
}

// FindValidSessionByTokenHash returns the session only if its expiry is
// still in the future. Expired rows may linger until the sweeper runs;
// they are never returned here.
func (s *Store) FindValidSessionByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		First(&session).Error
	if err != nil {
		return nil, translate(err, "Session not found")
	}
	return &session, nil
}

func (s *Store) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	return translate(
		s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.Session{}).Error,
		"Failed to delete session",
	)
}

// DeleteExpiredSessions is housekeeping only; validity is always checked
// at read time, so correctness does not depend on this running.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return 0, translate(res.Error, "Failed to delete expired sessions")
	}
	return res.RowsAffected, nil
}

// LinkAccount attaches an external OAuth identity to a user. Re-linking
// an identity that already belongs to another user fails with Conflict;
// it never silently overwrites.
func (s *Store) LinkAccount(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(account).Error, "Account is already linked to another user")
}

func (s *Store) FindAccountByProviderIdentity(ctx context.Context, providerID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND account_id = ?", providerID, accountID).
		First(&account).Error
	if err != nil {
		return nil, translate(err, "Account not found")
	}
	return &account, nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err, "Profile not found")
	}
	return &profile, nil
}

func (s *Store) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	res := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"software_background": profile.SoftwareBackground,
			"hardware_background": profile.HardwareBackground,
			"operating_system":    profile.OperatingSystem,
			"gpu_hardware":        profile.GPUHardware,
			"experience_level":    profile.ExperienceLevel,
			"preferred_language":  profile.PreferredLanguage,
		})
	if res.Error != nil {
		return translate(res.Error, "Failed to update profile")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Profile not found")
	}
	return nil
}

func (s *Store) AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(msg).Error, "Failed to store chat message")
}

func (s *Store) ListRecentChatMessages(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, translate(err, "Failed to list chat messages")
	}
	return msgs, nil
}

// translate maps GORM errors to the taxonomy. The msg is the caller-safe
// message attached to constraint and not-found failures.
func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.NotFound, msg, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.Conflict, msg, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(apperr.NotFound, "Referenced entity does not exist", err)
	default:
		return apperr.Wrap(apperr.Internal, "Database error", err)
	}
}
