package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/repository"
	"github.com/tracknest/ticket-tracker/internal/respond"
	"github.com/tracknest/ticket-tracker/internal/utils"
)

// AuthHandler bundles dependencies for authentication and account management
// endpoints.
type AuthHandler struct {
	Codec      *auth.Codec
	Users      *repository.UserRepo
	BcryptCost int
}

func NewAuthHandler(codec *auth.Codec, users *repository.UserRepo, bcryptCost int) *AuthHandler {
	return &AuthHandler{Codec: codec, Users: users, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=USER MANAGER ADMIN"`
}

type authenticateReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateUserReq struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=USER MANAGER ADMIN"`
}

type profilePictureReq struct {
	Image string `json:"image" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User  userResp  `json:"user"`
	Token tokenPart `json:"token"`
}

// Register creates an account and returns a token for it immediately.  The
// route policy table restricts the endpoint to admins.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	role, _ := auth.ParseRole(req.Role) // validated by the oneof tag

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Firstname, req.Lastname, req.Username, req.Email, req.Password, role, h.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return respond.Error(c, http.StatusConflict, "username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return respond.Error(c, http.StatusConflict, "email already exists")
		}
		return respond.Error(c, http.StatusInternalServerError, "create user failed")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	token, err := h.Codec.Issue(u.Username, u.Role)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "issue token failed")
	}
	return c.JSON(http.StatusCreated, authResp{
		User:  toUserResp(u),
		Token: tokenPart{Token: token.Value, Expires: token.Exp},
	})
}

// Authenticate verifies credentials and returns a fresh token.
func (h *AuthHandler) Authenticate(c echo.Context) error {
	var req authenticateReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respond.Error(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.Codec.Issue(u.Username, u.Role)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "issue token failed")
	}
	return c.JSON(http.StatusOK, authResp{
		User:  toUserResp(u),
		Token: tokenPart{Token: token.Value, Expires: token.Exp},
	})
}

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c echo.Context) error {
	p := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, p.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "user_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// ListUsers returns every account; admin-only by the route policy table.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, toUserResps(users))
}

// UpdateUser rewrites a user's identity fields and role; admin-only.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req updateUserReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	role, _ := auth.ParseRole(req.Role)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Update(ctx, id, req.Firstname, req.Lastname, req.Username, req.Email, role); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return respond.Error(c, http.StatusNotFound, "user_not_found")
		case errors.Is(err, repository.ErrUsernameExists):
			return respond.Error(c, http.StatusConflict, "username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return respond.Error(c, http.StatusConflict, "email already exists")
		}
		return respond.Error(c, http.StatusInternalServerError, "update failed")
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// DeleteUser removes an account and its membership edges; admin-only.
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "user_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfilePicture stores a base64 image for the requesting user.  Unlike
// the rest of user management this is self-service: the target is always the
// principal, never a path parameter.
func (h *AuthHandler) UpdateProfilePicture(c echo.Context) error {
	p := auth.PrincipalFrom(c)
	var req profilePictureReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfileImage(ctx, p.Username, req.Image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "user_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "update failed")
	}
	return c.NoContent(http.StatusNoContent)
}
