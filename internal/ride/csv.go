package ride

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Silver date/time cell layouts. The upstream stage writes dates either bare
// or with a midnight time part, depending on which writer produced the file.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05"}

const timeLayout = "15:04:05"

// ReadSilverCSV loads a silver ride dataset from a CSV file. The header must
// contain the columns the enrichment core depends on; all other columns pass
// through untouched.
func ReadSilverCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open silver dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read silver dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("silver dataset %s is empty", path)
	}

	header := rows[0]
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}

	for _, col := range []string{ColBookingID, ColPickupLocation, ColDropLocation, ColDate, ColTime} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("silver dataset is missing required column %q", col)
		}
	}

	ds := &Dataset{Columns: header}
	var badTimestamps int

	for _, row := range rows[1:] {
		rec := Record{
			Fields:         row,
			BookingID:      row[idx[ColBookingID]],
			PickupLocation: row[idx[ColPickupLocation]],
			DropLocation:   row[idx[ColDropLocation]],
		}

		ts, err := combineDateTime(row[idx[ColDate]], row[idx[ColTime]])
		if err != nil {
			badTimestamps++
		} else {
			rec.EventTime = ts
		}

		ds.Records = append(ds.Records, rec)
	}

	if badTimestamps > 0 {
		log.Printf("ride: %d of %d rows have unparseable date/time; they will not receive weather enrichment", badTimestamps, len(ds.Records))
	}

	return ds, nil
}

// WriteGoldCSV writes the enriched dataset: the original silver columns
// followed by the gold enrichment columns. Missing enrichment values are
// written as empty cells.
func WriteGoldCSV(path string, columns []string, records []GoldRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gold dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, 0, len(columns)+len(GoldColumns))
	header = append(header, columns...)
	header = append(header, GoldColumns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write gold header: %w", err)
	}

	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row, rec.Fields...)
		for _, v := range []*float64{
			rec.PickupLatitude, rec.PickupLongitude,
			rec.DropLatitude, rec.DropLongitude,
			rec.PickupTemperature2m, rec.PickupRain, rec.PickupSnowfall,
			rec.PickupWindSpeed10m, rec.PickupWindSpeed100m,
			rec.DropTemperature2m, rec.DropRain, rec.DropSnowfall,
			rec.DropWindSpeed10m, rec.DropWindSpeed100m,
		} {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write gold row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush gold dataset: %w", err)
	}
	return nil
}

// combineDateTime derives the event timestamp from the silver date and time
// cells, in UTC.
func combineDateTime(dateStr, timeStr string) (time.Time, error) {
	var date time.Time
	var err error
	for _, layout := range dateLayouts {
		date, err = time.Parse(layout, strings.TrimSpace(dateStr))
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}

	t, err := time.Parse(timeLayout, strings.TrimSpace(timeStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", timeStr, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
