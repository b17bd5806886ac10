package sqlcgen

import "context"

const listEdges = `-- name: ListEdges :many
SELECT id, map_id, from_node_id, to_node_id, weight, comment
FROM edges
WHERE map_id = $1
ORDER BY id ASC
`

func (q *Queries) ListEdges(ctx context.Context, mapID int64) ([]Edge, error) {
	rows, err := q.db.Query(ctx, listEdges, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Edge
	for rows.Next() {
		var i Edge
		if err := rows.Scan(&i.ID, &i.MapID, &i.FromNodeID, &i.ToNodeID, &i.Weight, &i.Comment); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertEdge = `-- name: InsertEdge :one
INSERT INTO edges (map_id, from_node_id, to_node_id, weight, comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

type InsertEdgeParams struct {
	MapID      int64
	FromNodeID int64
	ToNodeID   int64
	Weight     int32
	Comment    string
}

func (q *Queries) InsertEdge(ctx context.Context, arg InsertEdgeParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertEdge, arg.MapID, arg.FromNodeID, arg.ToNodeID, arg.Weight, arg.Comment)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateEdge = `-- name: UpdateEdge :execrows
UPDATE edges
SET from_node_id = $3,
    to_node_id = $4,
    weight = $5,
    comment = $6
WHERE id = $1
  AND map_id = $2
`

type UpdateEdgeParams struct {
	ID         int64
	MapID      int64
	FromNodeID int64
	ToNodeID   int64
	Weight     int32
	Comment    string
}

func (q *Queries) UpdateEdge(ctx context.Context, arg UpdateEdgeParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateEdge, arg.ID, arg.MapID, arg.FromNodeID, arg.ToNodeID, arg.Weight, arg.Comment)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteEdgesExcept = `-- name: DeleteEdgesExcept :exec
DELETE FROM edges
WHERE map_id = $1
  AND NOT (id = ANY($2::bigint[]))
`

func (q *Queries) DeleteEdgesExcept(ctx context.Context, mapID int64, keep []int64) error {
	if keep == nil {
		keep = []int64{}
	}
	_, err := q.db.Exec(ctx, deleteEdgesExcept, mapID, keep)
	return err
}
