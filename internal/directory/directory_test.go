package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDirectory_ResolveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, email FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email"}).
			AddRow("Alice Liddell", "alice@example.com"))

	ref := New(db).ResolveUser(context.Background(), "alice")
	assert.Equal(t, "alice", ref.ID)
	assert.Equal(t, "Alice Liddell", ref.Name)
	assert.Equal(t, "alice@example.com", ref.Email)
}

func TestDirectory_UnknownUserBecomesGhost(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, email FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email"}))

	ref := New(db).ResolveUser(context.Background(), "ghost")
	assert.Equal(t, "ghost", ref.ID)
	assert.Empty(t, ref.Name)
	assert.Empty(t, ref.Email)
}

func TestDirectory_LookupFailureBecomesGhost(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, email FROM users").
		WithArgs("alice").
		WillReturnError(errors.New("mysql gone away"))

	// Enrichment must never abort an archive.
	ref := New(db).ResolveUser(context.Background(), "alice")
	assert.Equal(t, "alice", ref.ID)
	assert.Empty(t, ref.Name)
}
