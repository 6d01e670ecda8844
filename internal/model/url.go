package model

import "time"

// TimeLayout is the createdAt format of the mapping file: second precision, no zone.
const TimeLayout = "2006-01-02 15:04:05"

// CSVHeader is the first line of every mapping file.
var CSVHeader = []string{"code", "longUrl", "id", "createdAt"}

// URL represents a shortened URL mapping
type URL struct {
	ID          uint64    // input to Base62 encoder
	ShortCode   string    // base62 encoded string
	OriginalURL string    // original long URL
	CreatedAt   time.Time // timestamp of creation, whole seconds
}

// Timestamp returns CreatedAt rendered in TimeLayout.
func (u URL) Timestamp() string {
	return u.CreatedAt.Format(TimeLayout)
}

// Equal reports whether both mappings carry the same code, URL, id and second.
func (u URL) Equal(o URL) bool {
	return u.ID == o.ID &&
		u.ShortCode == o.ShortCode &&
		u.OriginalURL == o.OriginalURL &&
		u.Timestamp() == o.Timestamp()
}
