package database

// CountryCode is a row of country_codes.
type CountryCode struct {
	ID   int64
	Code string
}

// CountryName is a row of country_names.
type CountryName struct {
	ID            int64
	Name          string
	CountryCodeID int64
}
