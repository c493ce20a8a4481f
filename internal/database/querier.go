package database

import "context"

type Querier interface {
	CountCountryCodes(ctx context.Context) (int64, error)
	CountCountryNames(ctx context.Context) (int64, error)
	CountNamesByCode(ctx context.Context, code string) (int64, error)
	GetCountryCodeByCode(ctx context.Context, code string) (CountryCode, error)
	InsertCountryCode(ctx context.Context, code string) (CountryCode, error)
	InsertCountryNames(ctx context.Context, arg InsertCountryNamesParams) ([]CountryName, error)
	ListNamesByCodeID(ctx context.Context, countryCodeID int64) ([]string, error)
}

var _ Querier = (*Queries)(nil)
