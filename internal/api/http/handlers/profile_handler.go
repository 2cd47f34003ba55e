package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/internal/api/dto"
	"github.com/supportdesk/support-portal/internal/service"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// ProfileHandler lets users edit their own account.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: profileService}
}

// UpdateProfile PATCH /api/user/profile.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.ProfileUpdateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	updated, err := h.service.Update(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(updated))
}

// UploadPhoto POST /api/user/profile-photo with a multipart "photo" field.
func (h *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return errorutil.NewValidationError("No file uploaded", map[string]any{"photo": "is required"})
	}
	updated, err := h.service.UploadPhoto(c.UserContext(), user.ID, fh)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(updated))
}
