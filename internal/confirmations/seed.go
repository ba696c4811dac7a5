package confirmations

import "time"

// DefaultSeed returns the bundled sample confirmations used when a
// deployment starts without a persisted store. The attending records
// carry the first folios of the sequence, so live allocation continues
// from AW-237.
func DefaultSeed(baseURL string) []Record {
	return []Record{
		{
			ID:         1,
			Folio:      "AW-234",
			Name:       "María González López",
			Email:      "maria.gonzalez@example.com",
			Phone:      "+52 33 1234 5678",
			WillAttend: true,
			Guests:     2,
			Timestamp:  time.Date(2025, time.October, 20, 10, 30, 0, 0, time.UTC),
			QRURL:      qrURLFor(baseURL, "AW-234"),
		},
		{
			ID:         2,
			Folio:      "AW-235",
			Name:       "Juan Carlos Pérez",
			Email:      "juancarlos.perez@example.com",
			Phone:      "+52 33 8765 4321",
			WillAttend: true,
			Guests:     1,
			Timestamp:  time.Date(2025, time.October, 21, 14, 15, 0, 0, time.UTC),
			QRURL:      qrURLFor(baseURL, "AW-235"),
		},
		{
			ID:         3,
			Folio:      "",
			Name:       "Ana María Rodríguez",
			Email:      "anamaria.rodriguez@example.com",
			Phone:      "+52 33 9876 5432",
			WillAttend: false,
			Guests:     0,
			Timestamp:  time.Date(2025, time.October, 22, 9, 45, 0, 0, time.UTC),
		},
		{
			ID:         4,
			Folio:      "AW-236",
			Name:       "Luis Fernando Sánchez",
			Email:      "luisfernando.sanchez@example.com",
			Phone:      "+52 33 2468 1357",
			WillAttend: true,
			Guests:     3,
			Timestamp:  time.Date(2025, time.October, 23, 16, 20, 0, 0, time.UTC),
			QRURL:      qrURLFor(baseURL, "AW-236"),
		},
	}
}

func qrURLFor(baseURL, folio string) *string {
	qrURL := baseURL + folio
	return &qrURL
}
