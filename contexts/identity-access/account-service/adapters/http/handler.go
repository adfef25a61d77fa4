package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"lyceum/contexts/identity-access/account-service/application/commands"
	"lyceum/contexts/identity-access/account-service/application/queries"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	httptransport "lyceum/contexts/identity-access/account-service/transport/http"
	"lyceum/internal/shared/gate"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	Register       commands.RegisterUseCase
	Login          commands.LoginUseCase
	Logout         commands.LogoutUseCase
	UpdateProfile  commands.UpdateProfileUseCase
	ChangePassword commands.ChangePasswordUseCase
	DeleteUser     commands.DeleteUserUseCase
	UpdateRole     commands.UpdateRoleUseCase
	GetUser        queries.GetUserUseCase
	ListUsers      queries.ListUsersUseCase
	Logger         *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.UserDTO, error) {
	user, err := h.Register.Execute(ctx, commands.RegisterCommand{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	result, err := h.Login.Execute(ctx, commands.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserDTO(result.User),
	}, nil
}

func (h Handler) LogoutHandler(ctx context.Context, principal *gate.Principal, token string) error {
	return h.Logout.Execute(ctx, principal, token)
}

func (h Handler) MeHandler(ctx context.Context, principal *gate.Principal) (httptransport.UserDTO, error) {
	user, err := h.GetUser.Me(ctx, principal)
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) ProfileHandler(ctx context.Context, userID string) (httptransport.PublicProfileDTO, error) {
	user, err := h.GetUser.Profile(ctx, userID)
	if err != nil {
		return httptransport.PublicProfileDTO{}, err
	}
	return httptransport.PublicProfileDTO{
		UserID:    user.UserID,
		Name:      user.Name,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) UpdateProfileHandler(
	ctx context.Context,
	principal *gate.Principal,
	userID string,
	req httptransport.UpdateProfileRequest,
) (httptransport.UserDTO, error) {
	user, err := h.UpdateProfile.Execute(ctx, principal, commands.UpdateProfileCommand{
		UserID: userID,
		Name:   req.Name,
		Bio:    req.Bio,
	})
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) ChangePasswordHandler(
	ctx context.Context,
	principal *gate.Principal,
	userID string,
	req httptransport.ChangePasswordRequest,
) error {
	return h.ChangePassword.Execute(ctx, principal, commands.ChangePasswordCommand{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
}

func (h Handler) DeleteUserHandler(ctx context.Context, principal *gate.Principal, userID string) error {
	return h.DeleteUser.Execute(ctx, principal, userID)
}

func (h Handler) UpdateRoleHandler(
	ctx context.Context,
	principal *gate.Principal,
	userID string,
	sourceIP string,
	req httptransport.UpdateRoleRequest,
) (httptransport.UserDTO, error) {
	user, err := h.UpdateRole.Execute(ctx, principal, commands.UpdateRoleCommand{
		UserID:   userID,
		Role:     req.Role,
		Reason:   req.Reason,
		SourceIP: sourceIP,
	})
	if err != nil {
		return httptransport.UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (h Handler) ListUsersHandler(
	ctx context.Context,
	principal *gate.Principal,
	req httptransport.ListUsersRequest,
) (httptransport.ListUsersResponse, error) {
	users, total, err := h.ListUsers.Execute(ctx, principal, queries.ListUsersQuery{
		Role:  req.Role,
		Page:  req.Page,
		Limit: req.Limit,
	})
	if err != nil {
		return httptransport.ListUsersResponse{}, err
	}
	resp := httptransport.ListUsersResponse{
		Users: make([]httptransport.UserDTO, 0, len(users)),
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	}
	if resp.Page <= 0 {
		resp.Page = 1
	}
	if resp.Limit <= 0 {
		resp.Limit = 20
	}
	for _, user := range users {
		resp.Users = append(resp.Users, toUserDTO(user))
	}
	return resp, nil
}

func toUserDTO(user entities.User) httptransport.UserDTO {
	return httptransport.UserDTO{
		UserID:    user.UserID,
		Email:     user.Email,
		Name:      user.Name,
		Bio:       user.Bio,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
