package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/ticket-tracker/internal/model"
)

func ticketRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "position", "status", "story_points", "board_id", "assigned_user_id", "created_at", "updated_at"})
}

func TestTicketGetByIDNullableColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(ticketRows().AddRow(7, "fix login", "", 0, "OPEN", nil, 2, nil, now, now))

	ticket, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, ticket.StoryPoints)
	assert.Nil(t, ticket.AssignedUserID)
	assert.Equal(t, 0, ticket.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketGetByIDPopulatedColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(8)).
		WillReturnRows(ticketRows().AddRow(8, "ship it", "", 3, "DONE", 5, 2, 11, now, now))

	ticket, err := repo.GetByID(context.Background(), 8)
	require.NoError(t, err)
	require.NotNil(t, ticket.StoryPoints)
	assert.Equal(t, 5, *ticket.StoryPoints)
	require.NotNil(t, ticket.AssignedUserID)
	assert.Equal(t, uint64(11), *ticket.AssignedUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketListByBoardOrdersByPosition(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,title,description,position,status,story_points,board_id,assigned_user_id,created_at,updated_at FROM tickets WHERE board_id=? ORDER BY position, id")).
		WithArgs(uint64(2)).
		WillReturnRows(ticketRows().
			AddRow(9, "first", "", 0, "OPEN", nil, 2, nil, now, now).
			AddRow(7, "second", "", 1, "OPEN", nil, 2, nil, now, now))

	tickets, err := repo.ListByBoard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "first", tickets[0].Title)
	assert.Equal(t, "second", tickets[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketListByBoardAndMemberOutsiderSeesNothing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	// The membership join yields zero rows for a non-member, the outsider gets
	// an empty listing rather than an error.
	mock.ExpectQuery("JOIN project_members pm ON pm.project_id = b.project_id").
		WithArgs(uint64(2), "outsider").
		WillReturnRows(ticketRows())

	tickets, err := repo.ListByBoardAndMember(context.Background(), 2, "outsider")
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.NotNil(t, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketUpdateBumpsTimestampInStatement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	// updated_at changes on every matched row, so an identical payload still
	// reports one affected row instead of masquerading as a missing ticket.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tickets SET title=?, description=?, position=?, status=?, story_points=?, board_id=?, assigned_user_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?")).
		WithArgs("fix login", "", 0, "OPEN", nil, uint64(2), nil, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), model.Ticket{ID: 7, Title: "fix login", Status: "OPEN", BoardID: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketUpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec("UPDATE tickets SET").
		WithArgs("fix login", "", 0, "OPEN", nil, uint64(2), nil, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), model.Ticket{ID: 99, Title: "fix login", Status: "OPEN", BoardID: 2})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreatePersistsNulls(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets (title, description, position, status, story_points, board_id, assigned_user_id) VALUES (?,?,?,?,?,?,?)")).
		WithArgs("fix login", "", 0, "OPEN", nil, uint64(2), nil).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT id,title,description,position,status").
		WithArgs(uint64(7)).
		WillReturnRows(ticketRows().AddRow(7, "fix login", "", 0, "OPEN", nil, 2, nil, now, now))

	ticket, err := repo.Create(context.Background(), model.Ticket{
		Title:   "fix login",
		Status:  "OPEN",
		BoardID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), ticket.ID)
	assert.Nil(t, ticket.AssignedUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
