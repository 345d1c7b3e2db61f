package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by updates and deletes that matched no row
var ErrNotFound = errors.New("record not found")

func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
