package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const nodeColumns = `id, map_id, name, beacon_id, floor_number, is_exit, is_entrance, x, y, area`

func scanNode(row pgx.Row, i *Node) error {
	return row.Scan(
		&i.ID,
		&i.MapID,
		&i.Name,
		&i.BeaconID,
		&i.FloorNumber,
		&i.IsExit,
		&i.IsEntrance,
		&i.X,
		&i.Y,
		&i.Area,
	)
}

const listNodes = `-- name: ListNodes :many
SELECT ` + nodeColumns + `
FROM nodes
WHERE map_id = $1
ORDER BY id ASC
`

func (q *Queries) ListNodes(ctx context.Context, mapID int64) ([]Node, error) {
	rows, err := q.db.Query(ctx, listNodes, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Node
	for rows.Next() {
		var i Node
		if err := scanNode(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getNodeByBeacon = `-- name: GetNodeByBeacon :one
SELECT ` + nodeColumns + `
FROM nodes
WHERE beacon_id = $1
ORDER BY id ASC
LIMIT 1
`

func (q *Queries) GetNodeByBeacon(ctx context.Context, beaconID string) (Node, error) {
	var i Node
	err := scanNode(q.db.QueryRow(ctx, getNodeByBeacon, beaconID), &i)
	return i, err
}

const listNodesWithMaps = `-- name: ListNodesWithMaps :many
SELECT n.id, n.map_id, n.name, n.beacon_id, n.floor_number, n.is_exit, n.is_entrance, n.x, n.y, n.area,
       m.id, m.name, m.north_angle, m.latitude, m.longitude, m.description
FROM nodes n
JOIN maps m ON m.id = n.map_id
ORDER BY n.id ASC
`

func (q *Queries) ListNodesWithMaps(ctx context.Context) ([]NodeWithMap, error) {
	rows, err := q.db.Query(ctx, listNodesWithMaps)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []NodeWithMap
	for rows.Next() {
		var i NodeWithMap
		if err := rows.Scan(
			&i.ID,
			&i.MapID,
			&i.Name,
			&i.BeaconID,
			&i.FloorNumber,
			&i.IsExit,
			&i.IsEntrance,
			&i.X,
			&i.Y,
			&i.Area,
			&i.Map.ID,
			&i.Map.Name,
			&i.Map.NorthAngle,
			&i.Map.Latitude,
			&i.Map.Longitude,
			&i.Map.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertNode = `-- name: InsertNode :one
INSERT INTO nodes (map_id, name, beacon_id, floor_number, is_exit, is_entrance, x, y, area)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
RETURNING id
`

type InsertNodeParams struct {
	MapID       int64
	Name        string
	BeaconID    string
	FloorNumber int32
	IsExit      bool
	IsEntrance  bool
	X           int32
	Y           int32
	Area        []byte
}

func (q *Queries) InsertNode(ctx context.Context, arg InsertNodeParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertNode,
		arg.MapID,
		arg.Name,
		arg.BeaconID,
		arg.FloorNumber,
		arg.IsExit,
		arg.IsEntrance,
		arg.X,
		arg.Y,
		arg.Area,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateNode = `-- name: UpdateNode :execrows
UPDATE nodes
SET name = $3,
    beacon_id = $4,
    floor_number = $5,
    is_exit = $6,
    is_entrance = $7,
    x = $8,
    y = $9,
    area = $10::jsonb
WHERE id = $1
  AND map_id = $2
`

type UpdateNodeParams struct {
	ID          int64
	MapID       int64
	Name        string
	BeaconID    string
	FloorNumber int32
	IsExit      bool
	IsEntrance  bool
	X           int32
	Y           int32
	Area        []byte
}

func (q *Queries) UpdateNode(ctx context.Context, arg UpdateNodeParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateNode,
		arg.ID,
		arg.MapID,
		arg.Name,
		arg.BeaconID,
		arg.FloorNumber,
		arg.IsExit,
		arg.IsEntrance,
		arg.X,
		arg.Y,
		arg.Area,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteNodesExcept = `-- name: DeleteNodesExcept :exec
DELETE FROM nodes
WHERE map_id = $1
  AND NOT (id = ANY($2::bigint[]))
`

func (q *Queries) DeleteNodesExcept(ctx context.Context, mapID int64, keep []int64) error {
	if keep == nil {
		keep = []int64{}
	}
	_, err := q.db.Exec(ctx, deleteNodesExcept, mapID, keep)
	return err
}
