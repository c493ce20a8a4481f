package database

import (
	"context"
)

const countCountryCodes = `-- name: CountCountryCodes :one
SELECT count(*) FROM country_codes
`

func (q *Queries) CountCountryCodes(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countCountryCodes)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countCountryNames = `-- name: CountCountryNames :one
SELECT count(*) FROM country_names
`

func (q *Queries) CountCountryNames(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countCountryNames)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countNamesByCode = `-- name: CountNamesByCode :one
SELECT count(n.id)
FROM country_names n
JOIN country_codes c ON c.id = n.country_code_id
WHERE c.code = $1
`

func (q *Queries) CountNamesByCode(ctx context.Context, code string) (int64, error) {
	row := q.db.QueryRow(ctx, countNamesByCode, code)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getCountryCodeByCode = `-- name: GetCountryCodeByCode :one
SELECT id, code FROM country_codes
WHERE code = $1
`

func (q *Queries) GetCountryCodeByCode(ctx context.Context, code string) (CountryCode, error) {
	row := q.db.QueryRow(ctx, getCountryCodeByCode, code)
	var i CountryCode
	err := row.Scan(&i.ID, &i.Code)
	return i, err
}

const insertCountryCode = `-- name: InsertCountryCode :one
INSERT INTO country_codes (code)
VALUES ($1)
ON CONFLICT (code) DO NOTHING
RETURNING id, code
`

// InsertCountryCode returns pgx.ErrNoRows when the code is already registered.
func (q *Queries) InsertCountryCode(ctx context.Context, code string) (CountryCode, error) {
	row := q.db.QueryRow(ctx, insertCountryCode, code)
	var i CountryCode
	err := row.Scan(&i.ID, &i.Code)
	return i, err
}

const insertCountryNames = `-- name: InsertCountryNames :many
INSERT INTO country_names (name, country_code_id)
SELECT unnest($1::text[]), $2::bigint
ON CONFLICT (name) DO NOTHING
RETURNING id, name, country_code_id
`

type InsertCountryNamesParams struct {
	Names         []string
	CountryCodeID int64
}

// InsertCountryNames returns only the rows it created. Names already present
// anywhere in country_names are skipped, whatever code they belong to.
func (q *Queries) InsertCountryNames(ctx context.Context, arg InsertCountryNamesParams) ([]CountryName, error) {
	rows, err := q.db.Query(ctx, insertCountryNames, arg.Names, arg.CountryCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountryName
	for rows.Next() {
		var i CountryName
		if err := rows.Scan(&i.ID, &i.Name, &i.CountryCodeID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listNamesByCodeID = `-- name: ListNamesByCodeID :many
SELECT name FROM country_names
WHERE country_code_id = $1
ORDER BY name
`

func (q *Queries) ListNamesByCodeID(ctx context.Context, countryCodeID int64) ([]string, error) {
	rows, err := q.db.Query(ctx, listNamesByCodeID, countryCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
