package ride

import "fmt"

// Validate checks the structural invariants the enrichment stage relies on:
// non-empty dataset, every row as wide as the header, and non-empty booking
// identifiers. Location strings may legitimately be empty; such rows simply
// receive null enrichment.
func Validate(ds *Dataset) error {
	if ds == nil || len(ds.Records) == 0 {
		return fmt.Errorf("silver dataset has no rows")
	}

	width := len(ds.Columns)
	for i, rec := range ds.Records {
		if len(rec.Fields) != width {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(rec.Fields), width)
		}
		if rec.BookingID == "" {
			return fmt.Errorf("row %d has an empty %s", i+1, ColBookingID)
		}
	}

	return nil
}
