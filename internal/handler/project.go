package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/authz"
	"github.com/tracknest/ticket-tracker/internal/queue"
	"github.com/tracknest/ticket-tracker/internal/repository"
	"github.com/tracknest/ticket-tracker/internal/respond"
	queue_publisher "github.com/tracknest/ticket-tracker/internal/service"
)

// ProjectHandler bundles repositories for project and membership endpoints.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
	Users    *repository.UserRepo
}

func NewProjectHandler(projects *repository.ProjectRepo, users *repository.UserRepo) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Users: users}
}

type projectReq struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=255"`
}

// Create inserts a new project.  Creation is ADMIN-only at the route level
// and performs no membership check: a brand-new project has no members yet.
func (h *ProjectHandler) Create(c echo.Context) error {
	var req projectReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.Create(ctx, req.Name, req.Description)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "create project failed")
	}
	return c.JSON(http.StatusCreated, toProjectResp(p))
}

// List returns projects visible to the principal: all of them for admins,
// membership-scoped rows for everyone else.
func (h *ProjectHandler) List(c echo.Context) error {
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if authz.IsAdmin(principal) {
		all, err := h.Projects.ListAll(ctx)
		if err != nil {
			return respond.Error(c, http.StatusInternalServerError, "query failed")
		}
		return c.JSON(http.StatusOK, projectResps(all))
	}
	mine, err := h.Projects.ListByMember(ctx, principal.Username)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, projectResps(mine))
}

// Get returns one project after the membership check.
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(auth.PrincipalFrom(c), &p); err != nil {
		return respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	return c.JSON(http.StatusOK, toProjectResp(p))
}

// Update rewrites name and description after the membership check.
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req projectReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(auth.PrincipalFrom(c), &p); err != nil {
		return respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	if err := h.Projects.Update(ctx, id, req.Name, req.Description); err != nil {
		return respond.Error(c, http.StatusInternalServerError, "update failed")
	}
	p, err = h.Projects.GetByID(ctx, id)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, toProjectResp(p))
}

// Delete removes the project and, transitively, its boards and their tickets.
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(principal, &p); err != nil {
		return respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	if err := h.Projects.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "delete failed")
	}

	// Audit trail; failures are logged by the publisher and never fail the
	// request — the deletion has already committed.
	_ = queue_publisher.PublishAuditEvent(c.Request().Context(), queue.AuditEvent{
		Type:        queue.EventProjectDeleted,
		Actor:       principal.Username,
		ProjectID:   p.ID,
		ProjectName: p.Name,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, respond.Success{Message: "project deleted"})
}

// AddMember records the user↔project membership edge.  Adding an existing
// member is idempotent.
func (h *ProjectHandler) AddMember(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid project id")
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid user id")
	}
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(principal, &p); err != nil {
		return respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "user_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.Projects.AddMember(ctx, projectID, userID); err != nil {
		return respond.Error(c, http.StatusInternalServerError, "add member failed")
	}

	_ = queue_publisher.PublishAuditEvent(c.Request().Context(), queue.AuditEvent{
		Type:           queue.EventMemberAdded,
		Actor:          principal.Username,
		ProjectID:      p.ID,
		ProjectName:    p.Name,
		MemberID:       u.ID,
		MemberUsername: u.Username,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, respond.Success{Message: "user assigned to project"})
}

// RemoveMember deletes the membership edge only.  The user's account and any
// tickets assigned to them are untouched; removing an absent member is a
// no-op.
func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid project id")
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid user id")
	}
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(principal, &p); err != nil {
		return respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "user_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.Projects.RemoveMember(ctx, projectID, userID); err != nil {
		return respond.Error(c, http.StatusInternalServerError, "remove member failed")
	}

	_ = queue_publisher.PublishAuditEvent(c.Request().Context(), queue.AuditEvent{
		Type:           queue.EventMemberRemoved,
		Actor:          principal.Username,
		ProjectID:      p.ID,
		ProjectName:    p.Name,
		MemberID:       u.ID,
		MemberUsername: u.Username,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, respond.Success{Message: "user removed from project"})
}

// ListMembers returns the project's member set after the membership check.
func (h *ProjectHandler) ListMembers(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid project id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(auth.PrincipalFrom(c), &p); err != nil {
		return respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	return c.JSON(http.StatusOK, toUserResps(p.Members))
}
