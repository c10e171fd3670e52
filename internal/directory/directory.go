package directory

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"backend-helpqueue/internal/models"
)

// Directory resolves submitter ids against the users table so archived
// tickets carry a display name and email.
type Directory struct {
	db *sql.DB
}

func New(db *sql.DB) *Directory {
	return &Directory{db: db}
}

// ResolveUser looks up a user reference. Any failure degrades to a
// ghost reference holding only the id; enrichment must never abort an
// archive.
func (d *Directory) ResolveUser(ctx context.Context, id string) models.UserRef {
	ref := models.UserRef{ID: id}

	err := d.db.QueryRowContext(ctx,
		"SELECT name, email FROM users WHERE id = ?", id,
	).Scan(&ref.Name, &ref.Email)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[directory] lookup %s: %v", id, err)
		}
		return models.UserRef{ID: id}
	}
	return ref
}
