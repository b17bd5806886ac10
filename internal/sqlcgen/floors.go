package sqlcgen

import "context"

const listFloors = `-- name: ListFloors :many
SELECT map_id, floor_number, label, position, grid
FROM floors
WHERE map_id = $1
ORDER BY position ASC, floor_number ASC
`

func (q *Queries) ListFloors(ctx context.Context, mapID int64) ([]Floor, error) {
	rows, err := q.db.Query(ctx, listFloors, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Floor
	for rows.Next() {
		var i Floor
		if err := rows.Scan(&i.MapID, &i.FloorNumber, &i.Label, &i.Position, &i.Grid); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteFloors = `-- name: DeleteFloors :exec
DELETE FROM floors
WHERE map_id = $1
`

func (q *Queries) DeleteFloors(ctx context.Context, mapID int64) error {
	_, err := q.db.Exec(ctx, deleteFloors, mapID)
	return err
}

const insertFloor = `-- name: InsertFloor :exec
INSERT INTO floors (map_id, floor_number, label, position, grid)
VALUES ($1, $2, $3, $4, $5::jsonb)
`

type InsertFloorParams struct {
	MapID       int64
	FloorNumber int32
	Label       string
	Position    int32
	Grid        []byte
}

func (q *Queries) InsertFloor(ctx context.Context, arg InsertFloorParams) error {
	_, err := q.db.Exec(ctx, insertFloor, arg.MapID, arg.FloorNumber, arg.Label, arg.Position, arg.Grid)
	return err
}
