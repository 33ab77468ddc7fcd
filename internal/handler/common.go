package handler // handler defines http handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tracknest/ticket-tracker/internal/model"
)

// dbTimeout bounds every storage call made on behalf of a single request.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// ----- response DTOs shared across handlers -----

type userResp struct {
	ID           uint64  `json:"id"`
	Firstname    string  `json:"firstname"`
	Lastname     string  `json:"lastname"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

type projectResp struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Users       []userResp `json:"users"`
}

type boardResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectID   uint64 `json:"projectId"`
}

type ticketResp struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Position       int     `json:"position"`
	Status         string  `json:"status"`
	StoryPoints    *int    `json:"storyPoints,omitempty"`
	BoardID        uint64  `json:"boardId"`
	AssignedUserID *uint64 `json:"assignedUserId,omitempty"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:           u.ID,
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role.String(),
		ProfileImage: u.ProfileImage,
	}
}

func toUserResps(users []model.User) []userResp {
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return out
}

func toProjectResp(p model.Project) projectResp {
	return projectResp{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Users:       toUserResps(p.Members),
	}
}

func projectResps(projects []model.Project) []projectResp {
	out := make([]projectResp, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResp(p))
	}
	return out
}

func toBoardResp(b model.Board) boardResp {
	return boardResp{ID: b.ID, Name: b.Name, Description: b.Description, ProjectID: b.ProjectID}
}

func toTicketResp(t model.Ticket) ticketResp {
	return ticketResp{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Position:       t.Position,
		Status:         t.Status,
		StoryPoints:    t.StoryPoints,
		BoardID:        t.BoardID,
		AssignedUserID: t.AssignedUserID,
	}
}
