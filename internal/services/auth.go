package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/studyx/internal/models"
)

// Backend error codes with dedicated user-facing messages.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUsernameExists     = "USERNAME_EXISTS"
)

// AuthService covers login, registration and profile endpoints.
type AuthService struct {
	api Requester
}

// NewAuthService creates an [AuthService].
func NewAuthService(api Requester) *AuthService {
	return &AuthService{api: api}
}

// Login posts credentials to /api/loginAct. Cookie-based backends return an empty [models.LoginResponse].
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/loginAct", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout posts to /api/logout.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.api.Do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// Profile fetches the authenticated member.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.api.Do(ctx, http.MethodGet, "/api/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account. A readable profile image switches the body to multipart with the account as a
// JSON "data" part and the image as "profileImage".
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	if !req.HasProfileImage() {
		return s.api.Do(ctx, http.MethodPost, "/api/registerAct", req, nil)
	}

	body := &Multipart{
		JSON:  map[string]any{"data": req},
		Files: []MultipartFile{{Field: "profileImage", Path: req.ProfileImage}},
	}
	return s.api.Do(ctx, http.MethodPost, "/api/registerAct", body, nil)
}

// UpdateProfile sends a partial profile and returns the stored result.
func (s *AuthService) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	var user models.User
	if err := s.api.Do(ctx, http.MethodPatch, "/api/update/profile", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangeEmail updates the login email.
func (s *AuthService) ChangeEmail(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	return s.api.Do(ctx, http.MethodPut, "/api/update/email", map[string]string{"email": email}, nil)
}

// ChangePassword updates the password.
func (s *AuthService) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if change.CurrentPassword == "" || change.NewPassword == "" {
		return fmt.Errorf("current and new password are required")
	}
	return s.api.Do(ctx, http.MethodPatch, "/api/update/password", change, nil)
}

// DeleteAccount removes the account permanently.
func (s *AuthService) DeleteAccount(ctx context.Context, req models.AccountDeletion) error {
	return s.api.Do(ctx, http.MethodDelete, "/api/delete/account", req, nil)
}
