package service

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/internal/upload"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// ProfileUpdateInput is the editable profile. PhoneNumber and
// ProfilePhotoURL are left unchanged when omitted; an empty PhoneNumber
// clears it.
type ProfileUpdateInput struct {
	DisplayName     string  `json:"displayName" validate:"required,min=2"`
	Email           string  `json:"email" validate:"required,email"`
	PhoneNumber     *string `json:"phoneNumber"`
	ProfilePhotoURL *string `json:"profilePhotoUrl"`
}

// ProfileService edits the caller's own account.
type ProfileService struct {
	store      storage.Storage
	uploads    *upload.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(store storage.Storage, uploads *upload.Store, dispatcher events.Dispatcher, logger *zap.Logger) *ProfileService {
	return &ProfileService{store: store, uploads: uploads, dispatcher: dispatcher, logger: logger}
}

// Update applies a profile edit. A taken email is a conflict that still
// matches domain.ErrEmailTaken.
func (s *ProfileService) Update(ctx context.Context, userID int64, input ProfileUpdateInput) (*domain.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, userID, domain.UserPatch{
		Email:           &input.Email,
		DisplayName:     &input.DisplayName,
		PhoneNumber:     input.PhoneNumber,
		ProfilePhotoURL: input.ProfilePhotoURL,
	})
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return nil, errorutil.NewConflict("Email already exists", map[string]any{"email": "already exists"}, err)
	case errors.Is(err, domain.ErrNotFound):
		return nil, errorutil.NewNotFound("user", map[string]any{"id": userID})
	case err != nil:
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventProfileUpdated,
		ActorID: userID,
		Payload: events.UserPayload{User: *user},
	})
	return user, nil
}

// UploadPhoto stores an image and records its URL on the user. The file is
// removed again when the user update fails.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID int64, fh *multipart.FileHeader) (*domain.User, error) {
	if fh == nil {
		return nil, errorutil.NewValidationError("No file uploaded", map[string]any{"photo": "is required"})
	}

	stored, err := s.uploads.SavePhoto(fh)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return nil, errorutil.NewDomainError(errorutil.CodeValidation, "File too large", http.StatusRequestEntityTooLarge,
			map[string]any{"photo": "must not exceed " + humanize.IBytes(uint64(s.uploads.MaxBytes()))})
	case errors.Is(err, upload.ErrUnsupportedType):
		return nil, errorutil.NewValidationError("Invalid file type. Only JPEG, PNG and GIF are allowed.", map[string]any{"photo": "unsupported type"})
	case err != nil:
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, userID, domain.UserPatch{ProfilePhotoURL: &stored.URL})
	if err != nil {
		if rmErr := s.uploads.Remove(stored.Name); rmErr != nil && s.logger != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file", stored.Name), zap.Error(rmErr))
		}
		return nil, err
	}
	return user, nil
}
