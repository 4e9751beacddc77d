package model

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/database"
)

// LoadList loads rows from a database into a list.
//
// The `scan` function determine how to set the values on each object.
func LoadList[T any](
	ctx context.Context,
	conn database.Queryable,
	list *[]T,
	capacity int,
	scan func(database.Row, *T) error,
	sql string,
	arguments ...any,
) error {
	rows, err := conn.Query(ctx, sql, arguments...)

	if err != nil {
		return err
	}

	defer rows.Close()

	*list = make([]T, 0, capacity)

	for rows.Next() {
		var instance T

		if err := scan(rows, &instance); err != nil {
			return database.Translate(err)
		}

		*list = append(*list, instance)
	}

	return database.Translate(rows.Err())
}
