package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX matches the minimal interface needed from pgxpool.Pool or pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const createMap = `-- name: CreateMap :one
INSERT INTO maps (name, north_angle, latitude, longitude, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, north_angle, latitude, longitude, description, version
`

type CreateMapParams struct {
	Name        string
	NorthAngle  float64
	Latitude    float64
	Longitude   float64
	Description string
}

func (q *Queries) CreateMap(ctx context.Context, arg CreateMapParams) (Map, error) {
	row := q.db.QueryRow(ctx, createMap, arg.Name, arg.NorthAngle, arg.Latitude, arg.Longitude, arg.Description)
	var i Map
	err := row.Scan(&i.ID, &i.Name, &i.NorthAngle, &i.Latitude, &i.Longitude, &i.Description, &i.Version)
	return i, err
}

const updateMap = `-- name: UpdateMap :one
UPDATE maps
SET name = $2,
    north_angle = $3,
    latitude = $4,
    longitude = $5,
    description = $6,
    version = version + 1,
    updated_at = now()
WHERE id = $1 AND version = $7
RETURNING id, name, north_angle, latitude, longitude, description, version
`

type UpdateMapParams struct {
	ID          int64
	Name        string
	NorthAngle  float64
	Latitude    float64
	Longitude   float64
	Description string
	Version     int64
}

func (q *Queries) UpdateMap(ctx context.Context, arg UpdateMapParams) (Map, error) {
	row := q.db.QueryRow(ctx, updateMap, arg.ID, arg.Name, arg.NorthAngle, arg.Latitude, arg.Longitude, arg.Description, arg.Version)
	var i Map
	err := row.Scan(&i.ID, &i.Name, &i.NorthAngle, &i.Latitude, &i.Longitude, &i.Description, &i.Version)
	return i, err
}

const getMap = `-- name: GetMap :one
SELECT id, name, north_angle, latitude, longitude, description, version
FROM maps
WHERE id = $1
`

func (q *Queries) GetMap(ctx context.Context, id int64) (Map, error) {
	row := q.db.QueryRow(ctx, getMap, id)
	var i Map
	err := row.Scan(&i.ID, &i.Name, &i.NorthAngle, &i.Latitude, &i.Longitude, &i.Description, &i.Version)
	return i, err
}

const listMaps = `-- name: ListMaps :many
SELECT id, name, north_angle, latitude, longitude, description, version
FROM maps
ORDER BY id ASC
`

func (q *Queries) ListMaps(ctx context.Context) ([]Map, error) {
	rows, err := q.db.Query(ctx, listMaps)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Map
	for rows.Next() {
		var i Map
		if err := rows.Scan(&i.ID, &i.Name, &i.NorthAngle, &i.Latitude, &i.Longitude, &i.Description, &i.Version); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteMap = `-- name: DeleteMap :execrows
DELETE FROM maps
WHERE id = $1
`

func (q *Queries) DeleteMap(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteMap, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
