package supabase

import (
	"context"
	"net/http"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	httpclient "legalaid-seeder/internal/common/http"
)

const adminUsersPath = "/auth/v1/admin/users"

// AdminClient manages auth users. It needs the service role key.
type AdminClient struct {
	http *httpclient.Client
}

// AuthUser is the subset of an auth user the seeder reads back.
type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// CreateUserRequest is the admin API payload for a new user.
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

func NewAdminClient(baseURL, serviceRoleKey string, timeout time.Duration) *AdminClient {
	return &AdminClient{
		http: httpclient.NewClient(baseURL, timeout).
			WithHeader("apikey", serviceRoleKey).
			WithHeader("Authorization", "Bearer "+serviceRoleKey),
	}
}

func (a *AdminClient) CreateUser(ctx context.Context, user *CreateUserRequest) (*AuthUser, error) {
	resp, err := a.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   adminUsersPath,
		Body:   user,
	})
	if err != nil {
		return nil, apperrors.NewUserProvisioningFailedError(user.Email, err)
	}
	if !resp.OK(http.StatusOK, http.StatusCreated) {
		return nil, apperrors.NewUserProvisioningFailedError(user.Email,
			apperrors.NewBackendRequestError("create user", resp.StatusCode, string(resp.Body)))
	}

	var created AuthUser
	if err := resp.Decode(&created); err != nil {
		return nil, apperrors.NewUserProvisioningFailedError(user.Email, err)
	}
	return &created, nil
}

// DeleteUser removes an auth user. A user that no longer exists is not an
// error, so purges can be re-run.
func (a *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	resp, err := a.http.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   adminUsersPath + "/" + userID,
	})
	if err != nil {
		return apperrors.NewBackendUnavailableError("delete user "+userID, err)
	}
	if !resp.OK(http.StatusOK, http.StatusNoContent, http.StatusNotFound) {
		return apperrors.NewBackendRequestError("delete user "+userID, resp.StatusCode, string(resp.Body))
	}
	return nil
}
