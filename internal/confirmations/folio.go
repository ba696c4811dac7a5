package confirmations

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	folioPrefix   = "AW-"
	folioBaseline = 233
)

// nextFolio derives the next sequential folio from the existing records:
// the highest numeric suffix seen (baseline 233 when none) plus one,
// zero-padded to three digits. Folios are never reused, even when records
// are removed administratively, because allocation always scans the
// current maximum.
//
// Callers must hold the store lock and append the resulting record within
// the same critical section, otherwise two submissions could derive the
// same folio.
func nextFolio(records []Record) string {
	maxSuffix := folioBaseline
	for _, record := range records {
		suffix, ok := folioSuffix(record.Folio)
		if ok && suffix > maxSuffix {
			maxSuffix = suffix
		}
	}
	return fmt.Sprintf("%s%03d", folioPrefix, maxSuffix+1)
}

func folioSuffix(folio string) (int, bool) {
	if !strings.HasPrefix(folio, folioPrefix) {
		return 0, false
	}
	suffix, err := strconv.Atoi(strings.TrimPrefix(folio, folioPrefix))
	if err != nil {
		return 0, false
	}
	return suffix, true
}
