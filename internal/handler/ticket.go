package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/authz"
	"github.com/tracknest/ticket-tracker/internal/model"
	"github.com/tracknest/ticket-tracker/internal/queue"
	"github.com/tracknest/ticket-tracker/internal/repository"
	"github.com/tracknest/ticket-tracker/internal/respond"
	queue_publisher "github.com/tracknest/ticket-tracker/internal/service"
)

// TicketHandler bundles repositories for ticket endpoints.  Tickets inherit
// their access scope from board->project, and every assignee written here has
// been validated against the owning project's member set first.
type TicketHandler struct {
	Tickets  *repository.TicketRepo
	Boards   *repository.BoardRepo
	Projects *repository.ProjectRepo
	Users    *repository.UserRepo
}

func NewTicketHandler(tickets *repository.TicketRepo, boards *repository.BoardRepo, projects *repository.ProjectRepo, users *repository.UserRepo) *TicketHandler {
	return &TicketHandler{Tickets: tickets, Boards: boards, Projects: projects, Users: users}
}

type ticketReq struct {
	Title       string `json:"title" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=255"`
	Position    *int   `json:"position" validate:"required,gte=0"`
	// Status is an open enumeration: clients may introduce new workflow
	// states, so only presence is validated.
	Status         string  `json:"status" validate:"required"`
	StoryPoints    *int    `json:"storyPoints" validate:"omitempty,gte=0"`
	BoardID        uint64  `json:"boardId" validate:"required"`
	AssignedUserID *uint64 `json:"assignedUserId"`
}

// loadScope resolves board -> project and runs the membership check,
// answering the request itself on failure.
func (h *TicketHandler) loadScope(c echo.Context, boardID uint64) (model.Board, model.Project, bool, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Boards.GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Board{}, model.Project{}, false, respond.Error(c, http.StatusNotFound, "board_not_found")
		}
		return model.Board{}, model.Project{}, false, respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	p, err := h.Projects.GetByID(ctx, b.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Board{}, model.Project{}, false, respond.Error(c, http.StatusNotFound, "project_not_found")
		}
		return model.Board{}, model.Project{}, false, respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if err := authz.ValidateAccess(auth.PrincipalFrom(c), &p); err != nil {
		return model.Board{}, model.Project{}, false, respond.Error(c, http.StatusForbidden, "you do not have permission to access this project")
	}
	return b, p, true, nil
}

// resolveAssignee maps validation outcomes onto responses.  Returns false
// when the request has already been answered.
func (h *TicketHandler) resolveAssignee(c echo.Context, id *uint64, project *model.Project) (*model.User, bool, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := authz.ResolveAssignee(ctx, h.Users, id, project)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, false, respond.Error(c, http.StatusNotFound, "user_not_found")
		case errors.Is(err, authz.ErrUserNotInProject):
			return nil, false, respond.Error(c, http.StatusConflict, "user_is_not_in_project")
		}
		return nil, false, respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	return u, true, nil
}

func (h *TicketHandler) publishAssigned(c echo.Context, t model.Ticket, p model.Project, assignee *model.User) {
	if assignee == nil {
		return
	}
	_ = queue_publisher.PublishAuditEvent(c.Request().Context(), queue.AuditEvent{
		Type:             queue.EventTicketAssigned,
		Actor:            auth.PrincipalFrom(c).Username,
		ProjectID:        p.ID,
		ProjectName:      p.Name,
		BoardID:          t.BoardID,
		TicketID:         t.ID,
		TicketTitle:      t.Title,
		AssigneeID:       assignee.ID,
		AssigneeUsername: assignee.Username,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

// Create inserts a ticket on a board the principal can access.  A supplied
// assignee must be a member of the board's project.
func (h *TicketHandler) Create(c echo.Context) error {
	var req ticketReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	_, p, ok, err := h.loadScope(c, req.BoardID)
	if !ok {
		return err
	}
	assignee, ok, err := h.resolveAssignee(c, req.AssignedUserID, &p)
	if !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.Create(ctx, model.Ticket{
		Title:          req.Title,
		Description:    req.Description,
		Position:       *req.Position,
		Status:         req.Status,
		StoryPoints:    req.StoryPoints,
		BoardID:        req.BoardID,
		AssignedUserID: req.AssignedUserID,
	})
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "create ticket failed")
	}
	h.publishAssigned(c, t, p, assignee)
	return c.JSON(http.StatusCreated, toTicketResp(t))
}

// List returns all tickets for admins, membership-scoped tickets otherwise.
func (h *TicketHandler) List(c echo.Context) error {
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		tickets []model.Ticket
		err     error
	)
	if authz.IsAdmin(principal) {
		tickets, err = h.Tickets.ListAll(ctx)
	} else {
		tickets, err = h.Tickets.ListByMember(ctx, principal.Username)
	}
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]ticketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one ticket after checking membership of its board's project.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "ticket_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if _, _, ok, err := h.loadScope(c, t.BoardID); !ok {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// Update rewrites a ticket.  Moving it to another board requires access to
// both boards' projects, and the assignee is re-validated against the target
// project on every write, so a stale assignment cannot survive a move.
func (h *TicketHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req ticketReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "ticket_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	_, targetProject, ok, scopeErr := h.loadScope(c, t.BoardID)
	if !ok {
		return scopeErr
	}
	if req.BoardID != t.BoardID {
		_, targetProject, ok, scopeErr = h.loadScope(c, req.BoardID)
		if !ok {
			return scopeErr
		}
	}

	assignee, ok, err := h.resolveAssignee(c, req.AssignedUserID, &targetProject)
	if !ok {
		return err
	}

	prev := t.AssignedUserID
	t.Title = req.Title
	t.Description = req.Description
	t.Position = *req.Position
	t.Status = req.Status
	t.StoryPoints = req.StoryPoints
	t.BoardID = req.BoardID
	t.AssignedUserID = req.AssignedUserID

	if err := h.Tickets.Update(ctx, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "ticket_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "update failed")
	}
	t, err = h.Tickets.GetByID(ctx, id)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if assignee != nil && (prev == nil || *prev != assignee.ID) {
		h.publishAssigned(c, t, targetProject, assignee)
	}
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// Delete removes a ticket; MANAGER or ADMIN by the route policy table, plus
// the membership check here.
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "ticket_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	if _, _, ok, err := h.loadScope(c, t.BoardID); !ok {
		return err
	}
	if err := h.Tickets.Delete(ctx, id); err != nil {
		return respond.Error(c, http.StatusInternalServerError, "delete failed")
	}
	return c.JSON(http.StatusOK, respond.Success{Message: "ticket deleted"})
}

// ByBoard lists one board's tickets ordered by position.  Admins see the
// board unconditionally; everyone else gets the membership-scoped query,
// which simply returns no rows for outsiders.
func (h *TicketHandler) ByBoard(c echo.Context) error {
	boardID, err := pathID(c, "boardId")
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid board id")
	}
	principal := auth.PrincipalFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Boards.GetByID(ctx, boardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond.Error(c, http.StatusNotFound, "board_not_found")
		}
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}

	var tickets []model.Ticket
	if authz.IsAdmin(principal) {
		tickets, err = h.Tickets.ListByBoard(ctx, boardID)
	} else {
		tickets, err = h.Tickets.ListByBoardAndMember(ctx, boardID, principal.Username)
	}
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "query failed")
	}
	out := make([]ticketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, out)
}
