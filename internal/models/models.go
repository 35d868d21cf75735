package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date exchanged as "yyyy-MM-dd".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return Date{}, fmt.Errorf("error parsing date %q: %w", s, err)
		}
		t = ts
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Ptr returns a pointer to a copy of d, for optional fields.
func (d Date) Ptr() *Date {
	return &d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Actor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	BirthDate Date   `json:"birthDate"`
	Country   string `json:"country"`
	DeadDate  *Date  `json:"deadDate"`
}

type Movie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Director    string `json:"director"`
	Country     string `json:"country"`
	ReleaseYear int    `json:"releaseYear"`
	Duration    int    `json:"duration"`
	Genre       string `json:"genre"`
	Sinopsis    string `json:"sinopsis"`
}
