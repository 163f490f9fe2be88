package ride

import "time"

// Column names the enrichment core depends on. Everything else in the silver
// dataset is carried through positionally and untouched.
const (
	ColBookingID      = "booking_id"
	ColPickupLocation = "pickup_location"
	ColDropLocation   = "drop_location"
	ColDate           = "date"
	ColTime           = "time"
)

// GoldColumns are appended to the silver columns by the enrichment stage, in
// this order.
var GoldColumns = []string{
	"pickup_latitude",
	"pickup_longitude",
	"drop_latitude",
	"drop_longitude",
	"pickup_temperature_2m",
	"pickup_rain",
	"pickup_snowfall",
	"pickup_wind_speed_10m",
	"pickup_wind_speed_100m",
	"drop_temperature_2m",
	"drop_rain",
	"drop_snowfall",
	"drop_wind_speed_10m",
	"drop_wind_speed_100m",
}

// Dataset is an in-memory silver ride table: a header and one Record per row.
type Dataset struct {
	Columns []string
	Records []Record
}

// Record is a single silver ride row. Fields holds every raw cell aligned
// with Dataset.Columns; the named fields are the parsed values the core needs.
type Record struct {
	Fields []string

	BookingID      string
	PickupLocation string
	DropLocation   string

	// EventTime combines the date and time columns, in UTC. Zero when either
	// column failed to parse; such rows pass through with null enrichment.
	EventTime time.Time
}

// GoldRecord is a Record extended with coordinates and nearest-in-time
// weather for both ride ends. Nil means the value could not be resolved;
// rows are never dropped for missing enrichment.
type GoldRecord struct {
	Record

	PickupLatitude  *float64
	PickupLongitude *float64
	DropLatitude    *float64
	DropLongitude   *float64

	PickupTemperature2m *float64
	PickupRain          *float64
	PickupSnowfall      *float64
	PickupWindSpeed10m  *float64
	PickupWindSpeed100m *float64

	DropTemperature2m *float64
	DropRain          *float64
	DropSnowfall      *float64
	DropWindSpeed10m  *float64
	DropWindSpeed100m *float64
}

// EventDate returns the calendar date of the ride event, truncated to
// midnight UTC.
func (r Record) EventDate() time.Time {
	t := r.EventTime
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
