package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/repository"
)

var mockTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTicketHandler(t *testing.T) (*TicketHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTicketHandler(
		repository.NewTicketRepo(db),
		repository.NewBoardRepo(db),
		repository.NewProjectRepo(db),
		repository.NewUserRepo(db),
	), mock
}

func ticketRequest(t *testing.T, method, target, body string, p auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	auth.SetPrincipal(c, p)
	return c, rec
}

func expectBoard(mock sqlmock.Sqlmock, boardID, projectID uint64) {
	mock.ExpectQuery("SELECT id,name,description,project_id").
		WithArgs(boardID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "project_id", "created_at", "updated_at"}).
			AddRow(boardID, "sprint", "", projectID, mockTime, mockTime))
}

func expectProjectWithMembers(mock sqlmock.Sqlmock, projectID uint64, members ...[2]any) {
	mock.ExpectQuery("SELECT id,name,description,created_at").
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(projectID, "apollo", "", mockTime, mockTime))
	rows := sqlmock.NewRows([]string{"id", "firstname", "lastname", "username", "email", "password_hash", "role", "profile_image", "created_at", "updated_at"})
	for _, m := range members {
		rows.AddRow(m[0], "F", "L", m[1], "x@example.com", "hash", "USER", nil, mockTime, mockTime)
	}
	mock.ExpectQuery("JOIN project_members pm ON pm.user_id = u.id").
		WithArgs(projectID).
		WillReturnRows(rows)
}

func TestTicketCreateWithoutAssignee(t *testing.T) {
	h, mock := newTicketHandler(t)

	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs("fix login", "", 0, "OPEN", nil, uint64(2), nil).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "position", "status", "story_points", "board_id", "assigned_user_id", "created_at", "updated_at"}).
			AddRow(7, "fix login", "", 0, "OPEN", nil, 2, nil, mockTime, mockTime))

	body := `{"title":"fix login","position":0,"status":"OPEN","boardId":2}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "alice", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateAssigneeNotInProject(t *testing.T) {
	h, mock := newTicketHandler(t)

	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})
	// Assignee exists but is not a member; the write must be rejected, never
	// silently unassigned.
	mock.ExpectQuery("SELECT id,firstname,lastname,username").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "username", "email", "password_hash", "role", "profile_image", "created_at", "updated_at"}).
			AddRow(9, "Mal", "Lory", "mallory", "m@example.com", "hash", "USER", nil, mockTime, mockTime))

	body := `{"title":"fix login","position":0,"status":"OPEN","boardId":2,"assignedUserId":9}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "alice", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user_is_not_in_project", resp["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateAssigneeUnknown(t *testing.T) {
	h, mock := newTicketHandler(t)

	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})
	mock.ExpectQuery("SELECT id,firstname,lastname,username").
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	body := `{"title":"fix login","position":0,"status":"OPEN","boardId":2,"assignedUserId":404}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "alice", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user_not_found", resp["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateNonMemberCallerForbidden(t *testing.T) {
	h, mock := newTicketHandler(t)

	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})

	body := `{"title":"fix login","position":0,"status":"OPEN","boardId":2}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "outsider", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateAcceptsUnlistedStatus(t *testing.T) {
	h, mock := newTicketHandler(t)

	// Status is an open enumeration: a workflow state outside the usual
	// OPEN/IN_PROGRESS/DONE set must not be rejected as a validation error.
	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs("fix login", "", 0, "BLOCKED", nil, uint64(2), nil).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "position", "status", "story_points", "board_id", "assigned_user_id", "created_at", "updated_at"}).
			AddRow(7, "fix login", "", 0, "BLOCKED", nil, 2, nil, mockTime, mockTime))

	body := `{"title":"fix login","position":0,"status":"BLOCKED","boardId":2}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "alice", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateTitleTooLongRejected(t *testing.T) {
	h, _ := newTicketHandler(t)

	body := `{"title":"` + strings.Repeat("x", 65) + `","position":0,"status":"OPEN","boardId":2}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "alice", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "fieldErrors")
}

func TestTicketCreateMissingStatusRejected(t *testing.T) {
	h, _ := newTicketHandler(t)

	body := `{"title":"fix login","position":0,"boardId":2}`
	c, rec := ticketRequest(t, http.MethodPost, "/api/v1/tickets", body, auth.Principal{Username: "alice", Role: auth.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "fieldErrors")
}

func TestTicketUpdateIdenticalPayloadSucceeds(t *testing.T) {
	h, mock := newTicketHandler(t)

	// Resubmitting the exact stored state must round-trip as 200, not 404:
	// the UPDATE bumps updated_at, so a matched row always counts as affected.
	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "position", "status", "story_points", "board_id", "assigned_user_id", "created_at", "updated_at"}).
			AddRow(7, "fix login", "", 0, "OPEN", nil, 2, nil, mockTime, mockTime))
	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})
	mock.ExpectExec("UPDATE tickets SET .+ updated_at=CURRENT_TIMESTAMP WHERE id=").
		WithArgs("fix login", "", 0, "OPEN", nil, uint64(2), nil, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "position", "status", "story_points", "board_id", "assigned_user_id", "created_at", "updated_at"}).
			AddRow(7, "fix login", "", 0, "OPEN", nil, 2, nil, mockTime, mockTime))

	body := `{"title":"fix login","position":0,"status":"OPEN","boardId":2}`
	c, rec := ticketRequest(t, http.MethodPut, "/api/v1/tickets/7", body, auth.Principal{Username: "alice", Role: auth.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketUpdateResubmittedStaleAssignmentRejected(t *testing.T) {
	h, mock := newTicketHandler(t)

	// Ticket 7 still carries assignee 9, who has since been removed from the
	// project.  Resubmitting the same payload must fail, not refresh it.
	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "position", "status", "story_points", "board_id", "assigned_user_id", "created_at", "updated_at"}).
			AddRow(7, "fix login", "", 0, "OPEN", nil, 2, 9, mockTime, mockTime))
	expectBoard(mock, 2, 1)
	expectProjectWithMembers(mock, 1, [2]any{3, "alice"})
	mock.ExpectQuery("SELECT id,firstname,lastname,username").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "username", "email", "password_hash", "role", "profile_image", "created_at", "updated_at"}).
			AddRow(9, "Mal", "Lory", "mallory", "m@example.com", "hash", "USER", nil, mockTime, mockTime))

	body := `{"title":"fix login","position":0,"status":"OPEN","boardId":2,"assignedUserId":9}`
	c, rec := ticketRequest(t, http.MethodPut, "/api/v1/tickets/7", body, auth.Principal{Username: "alice", Role: auth.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user_is_not_in_project", resp["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
