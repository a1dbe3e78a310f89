package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/repository"
	"alcyxob/gym-platform/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// CoachView is a coach profile with a short-lived picture URL.
type CoachView struct {
	domain.Coach
	ProfilePicURL string `json:"profilePic,omitempty"`
}

type CreateCoachRequest struct {
	FirstName      string   `json:"firstName" binding:"required"`
	LastName       string   `json:"lastName"`
	Email          string   `json:"email"`
	Title          string   `json:"title"`
	About          string   `json:"about"`
	Type           string   `json:"type" binding:"required"`
	Specialization []string `json:"specialization"`
	Certificates   []string `json:"certificates"`
}

type CoachService interface {
	ListCoaches(ctx context.Context, workoutType string) ([]CoachView, error)
	GetCoach(ctx context.Context, coachID string) (*CoachView, error)
	CreateCoach(ctx context.Context, req CreateCoachRequest) (*domain.Coach, error)
	// RequestAvatarUpload reserves a new object key for the coach picture and
	// returns a presigned PUT URL for it.
	RequestAvatarUpload(ctx context.Context, coachID, contentType string) (*domain.AvatarUpload, error)
}

type coachService struct {
	coachRepo   repository.CoachRepository
	fileStorage storage.FileStorage // nil when S3 is not configured
	clock       datetime.Clock
}

func NewCoachService(coachRepo repository.CoachRepository, fileStorage storage.FileStorage, clock datetime.Clock) CoachService {
	return &coachService{
		coachRepo:   coachRepo,
		fileStorage: fileStorage,
		clock:       clock,
	}
}

func (s *coachService) ListCoaches(ctx context.Context, workoutType string) ([]CoachView, error) {
	coaches, err := s.coachRepo.List(ctx, workoutType)
	if err != nil {
		return nil, err
	}
	views := make([]CoachView, 0, len(coaches))
	for _, c := range coaches {
		views = append(views, s.view(ctx, c))
	}
	return views, nil
}

func (s *coachService) GetCoach(ctx context.Context, coachID string) (*CoachView, error) {
	id, err := primitive.ObjectIDFromHex(coachID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "coachId")
	}
	coach, err := s.coachRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	view := s.view(ctx, *coach)
	return &view, nil
}

func (s *coachService) CreateCoach(ctx context.Context, req CreateCoachRequest) (*domain.Coach, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Type) == "" {
		return nil, ErrCoachProfileIncomplete
	}
	coach := &domain.Coach{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Title:          req.Title,
		About:          req.About,
		Type:           strings.TrimSpace(req.Type),
		Specialization: req.Specialization,
		Certificates:   req.Certificates,
	}
	if _, err := s.coachRepo.Create(ctx, coach); err != nil {
		return nil, err
	}
	return coach, nil
}

func (s *coachService) RequestAvatarUpload(ctx context.Context, coachID, contentType string) (*domain.AvatarUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	id, err := primitive.ObjectIDFromHex(coachID)
	if err != nil {
		return nil, invalidIDError(KindValidation, "coachId")
	}
	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, ErrUnsupportedContentType
	}
	if _, err := s.coachRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}

	objectKey := path.Join("avatars", id.Hex(), uuid.NewString()+"."+ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	// The profile points at the new key right away; until the browser
	// finishes the PUT the picture URL simply 404s.
	if err := s.coachRepo.SetProfilePicKey(ctx, id, objectKey); err != nil {
		return nil, err
	}

	return &domain.AvatarUpload{
		CoachID:     id.Hex(),
		ObjectKey:   objectKey,
		UploadURL:   uploadURL,
		ContentType: contentType,
		ExpiresAt:   s.clock.Now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

func (s *coachService) view(ctx context.Context, c domain.Coach) CoachView {
	v := CoachView{Coach: c}
	if s.fileStorage == nil || c.ProfilePicKey == "" {
		return v
	}
	u, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, c.ProfilePicKey, time.Hour)
	if err != nil {
		logger.WithError(err).Warn("profile picture url unavailable", "coachId", c.ID.Hex())
		return v
	}
	v.ProfilePicURL = u
	return v
}
