package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/authz"
	"github.com/tracknest/ticket-tracker/internal/model"
	"github.com/tracknest/ticket-tracker/internal/repository"
	"github.com/tracknest/ticket-tracker/internal/respond"
)

// BoardHandler bundles repositories for board endpoints.  Boards carry no
// ACL of their own: every decision walks board->project and checks the
// project's member set.
type BoardHandler struct {
	Boards   *repository.BoardRepo
	Projects *repository.ProjectRepo
}

func NewBoardHandler(boards *repository.BoardRepo, projects *repository.ProjectRepo) *BoardHandler {
	return &BoardHandler{Boards: boards, Projects: projects}
}

type boardReq struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=255"`
	ProjectID   uint64 `json:"projectId" validate:"required"`
}

// loadProjectChecked fetches the project and runs the membership check,
// answering the request itself on failure.
func (h *BoardHandler) loadProjectChecked(c echo.Context, projectID uint64) (model.Project, bool, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Project{}, false, respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return model.Project{}, false, respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(auth.PrincipalFrom(c), &p); err != nil {
		return model.Project{}, false, respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	return p, true, nil
}

// Create inserts a board under a project the principal can access.
func (h *BoardHandler) Create(c echo.Context) error {
	var req boardReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if _, ok, err := h.loadProjectChecked(c, req.ProjectID); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Boards.Create(ctx, req.Name, req.Description, req.ProjectID)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "create board failed")
	}
	return c.JSON(http.StatusCreated, toBoardResp(b))
}

// List returns all boards for admins, membership-scoped boards otherwise.
func (h *BoardHandler) List(c echo.Context) error {
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		boards []model.Board
		err    error
	)
	if authz.IsAdmin(principal) {
		boards, err = h.Boards.ListAll(ctx)
	} else {
		boards, err = h.Boards.ListByMember(ctx, principal.Username)
	}
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]boardResp, 0, len(boards))
	for _, b := range boards {
		out = append(out, toBoardResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one board after checking membership of its owning project.
func (h *BoardHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Boards.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "board_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if _, ok, err := h.loadProjectChecked(c, b.ProjectID); !ok {
		return err
	}
	return c.JSON(http.StatusOK, toBoardResp(b))
}

// Update rewrites a board.  Re-parenting requires membership of both the
// current and the target project, so a board cannot be moved into (or out of)
// a project behind the member set's back.
func (h *BoardHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req boardReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Boards.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "board_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if _, ok, err := h.loadProjectChecked(c, b.ProjectID); !ok {
		return err
	}
	if req.ProjectID != b.ProjectID {
		if _, ok, err := h.loadProjectChecked(c, req.ProjectID); !ok {
			return err
		}
	}
	if err := h.Boards.Update(ctx, id, req.Name, req.Description, req.ProjectID); err != nil {
		return respond.Error(c, http.StatusInternalServerError, "update failed")
	}
	b, err = h.Boards.GetByID(ctx, id)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, toBoardResp(b))
}

// Delete removes a board and its tickets; the parent project is untouched.
func (h *BoardHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Boards.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "board_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if _, ok, err := h.loadProjectChecked(c, b.ProjectID); !ok {
		return err
	}
	if err := h.Boards.Delete(ctx, id); err != nil {
		return respond.Error(c, http.StatusInternalServerError, "delete failed")
	}
	return c.JSON(http.StatusOK, respond.Success{Message: "board deleted"})
}

// ByProject lists the boards of one project after the membership check.
func (h *BoardHandler) ByProject(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid project id")
	}
	if _, ok, err := h.loadProjectChecked(c, projectID); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	boards, err := h.Boards.ListByProject(ctx, projectID)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]boardResp, 0, len(boards))
	for _, b := range boards {
		out = append(out, toBoardResp(b))
	}
	return c.JSON(http.StatusOK, out)
}
