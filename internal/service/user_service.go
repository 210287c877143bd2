package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewUser is the registration input. Password is plain text here and is
// hashed before it reaches storage.
type NewUser struct {
	domain.User
	Password string `json:"password"`
}

// PhotoLink points at a user photo in photo storage.
type PhotoLink struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type UserService interface {
	CreateUser(ctx context.Context, input NewUser) (*domain.User, error)
	// User returns nil when no user has that email.
	User(ctx context.Context, email string) (*domain.User, error)
	// Users lists every user, or with a coach email the trainees having at
	// least one training with that coach.
	Users(ctx context.Context, coach string) ([]domain.User, error)
	Coaches(ctx context.Context, filter repository.CoachFilter) ([]domain.User, error)
	// UpdateUser returns nil when no user has the patch email.
	UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, email string) (bool, error)
	PhotoUploadURL(ctx context.Context, email, contentType string) (*PhotoLink, error)
	PhotoURL(ctx context.Context, email string) (*PhotoLink, error)
}

type userService struct {
	userRepo     repository.UserRepository
	trainingRepo repository.TrainingRepository
	photos       storage.PhotoStorage // nil disables photo operations
	log          *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	trainingRepo repository.TrainingRepository,
	photos storage.PhotoStorage,
	log *zap.Logger,
) UserService {
	return &userService{userRepo: userRepo, trainingRepo: trainingRepo, photos: photos, log: log}
}

func (s *userService) CreateUser(ctx context.Context, input NewUser) (*domain.User, error) {
	user := input.User
	user.Email = strings.TrimSpace(user.Email)
	switch {
	case user.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	case input.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case !user.Type.Valid():
		return nil, fmt.Errorf("%w: unknown user type %q", ErrValidation, user.Type)
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	// email uniqueness is enforced by storage, a duplicate is ErrConflict
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) User(ctx context.Context, email string) (*domain.User, error) {
	return nilIfNotFound(s.userRepo.GetByEmail(ctx, email))
}

func (s *userService) Users(ctx context.Context, coach string) ([]domain.User, error) {
	if coach == "" {
		return s.userRepo.List(ctx)
	}
	emails, err := s.trainingRepo.TraineesOf(ctx, coach)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByEmails(ctx, emails)
}

func (s *userService) Coaches(ctx context.Context, filter repository.CoachFilter) ([]domain.User, error) {
	return s.userRepo.FindCoaches(ctx, filter)
}

func (s *userService) UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	if patch.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown user type %q", ErrValidation, *patch.Type)
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		hashed, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hashed
	}
	if patch.Photo == nil || s.photos == nil {
		return nilIfNotFound(s.userRepo.Update(ctx, patch))
	}

	existing, err := nilIfNotFound(s.userRepo.GetByEmail(ctx, patch.Email))
	if err != nil || existing == nil {
		return nil, err
	}
	replaced := existing.Photo != "" && existing.Photo != *patch.Photo
	if *patch.Photo != "" && *patch.Photo != existing.Photo {
		if err := s.checkUploaded(ctx, existing, *patch.Photo); err != nil {
			return nil, err
		}
	}

	updated, err := nilIfNotFound(s.userRepo.Update(ctx, patch))
	if err != nil || updated == nil {
		return updated, err
	}
	if replaced {
		if err := s.photos.Delete(ctx, existing.Photo); err != nil {
			s.log.Warn("failed to delete replaced photo", zap.String("key", existing.Photo), zap.Error(err))
		}
	}
	return updated, nil
}

// checkUploaded accepts a photo key only once the object is in storage and
// it was handed out for this user.
func (s *userService) checkUploaded(ctx context.Context, user *domain.User, key string) error {
	if !strings.HasPrefix(key, photoKeyPrefix(user)) {
		return fmt.Errorf("%w: photo %q does not belong to %s", ErrValidation, key, user.Email)
	}
	ok, err := s.photos.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: photo %q has not been uploaded", ErrValidation, key)
	}
	return nil
}

func photoKeyPrefix(user *domain.User) string {
	return fmt.Sprintf("users/%s/", user.ID)
}

// DeleteUser removes the user and, best effort, its photo.
func (s *userService) DeleteUser(ctx context.Context, email string) (bool, error) {
	user, err := nilIfNotFound(s.userRepo.GetByEmail(ctx, email))
	if err != nil || user == nil {
		return false, err
	}
	deleted, err := s.userRepo.Delete(ctx, email)
	if err != nil || !deleted {
		return deleted, err
	}
	if user.Photo != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, user.Photo); err != nil {
			s.log.Warn("failed to delete user photo",
				zap.String("email", email), zap.String("key", user.Photo), zap.Error(err))
		}
	}
	return true, nil
}

// PhotoUploadURL reserves a fresh object key for the user's photo and returns
// a presigned URL to upload it. The user keeps the current photo until the
// key is confirmed with UpdateUser after the upload.
func (s *userService) PhotoUploadURL(ctx context.Context, email, contentType string) (*PhotoLink, error) {
	if s.photos == nil {
		return nil, ErrPhotoStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type must be an image, got %q", ErrValidation, contentType)
	}

	user, err := nilIfNotFound(s.userRepo.GetByEmail(ctx, email))
	if err != nil || user == nil {
		return nil, err
	}

	key := photoKeyPrefix(user) + uuid.NewString()
	url, err := s.photos.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	return &PhotoLink{Key: key, URL: url}, nil
}

// PhotoURL returns nil when the user does not exist or has no photo.
func (s *userService) PhotoURL(ctx context.Context, email string) (*PhotoLink, error) {
	if s.photos == nil {
		return nil, ErrPhotoStorageDisabled
	}
	user, err := nilIfNotFound(s.userRepo.GetByEmail(ctx, email))
	if err != nil || user == nil || user.Photo == "" {
		return nil, err
	}
	url, err := s.photos.PresignDownload(ctx, user.Photo)
	if err != nil {
		return nil, err
	}
	return &PhotoLink{Key: user.Photo, URL: url}, nil
}

// nilIfNotFound turns a repository miss into a nil result.
func nilIfNotFound[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
