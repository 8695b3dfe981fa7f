package entity

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Specialties and Cities are the enumerations offered by the add-doctor form.
var (
	Specialties = []string{
		"General Physician",
		"Internal Medicine",
		"Cardiology",
		"Dermatology",
		"Pediatrics",
		"Orthopedics",
		"Neurology",
		"Psychiatry",
	}
	Cities = []string{
		"Mumbai",
		"Delhi",
		"Bangalore",
		"Pune",
		"Chennai",
		"Hyderabad",
		"Kolkata",
		"Ahmedabad",
	}
	Genders = []string{GenderMale, GenderFemale}
)

// DefaultListingSlug is where the home page and a successful submission land.
const DefaultListingSlug = "general-physician-internal-medicine"

// Doctor is the record owned by the external backend. ID is assigned there.
type Doctor struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Specialty   string  `json:"specialty"`
	Gender      string  `json:"gender"`
	City        string  `json:"city"`
	Experience  int     `json:"experience"`
	Rating      float64 `json:"rating"`
	Image       string  `json:"image"`
	Hospital    string  `json:"hospital"`
	Fee         int     `json:"fee"`
	ReviewCount int     `json:"reviewCount"`
}

// DoctorAddedEvent is published after the backend accepted a new doctor.
type DoctorAddedEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Doctor     Doctor    `json:"doctor"`
	OccurredAt time.Time `json:"occurred_at"`
}

const EventDoctorAdded = "doctor.added"

var ErrUnrecognizedPayload = errors.New("unrecognized doctor payload")

func IsSpecialty(s string) bool { return contains(Specialties, s) }
func IsCity(s string) bool      { return contains(Cities, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Slug turns a display name into its route form, e.g. "General Physician" -> "general-physician".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SpecialtyTitle returns a heading for a listing slug.
func SpecialtyTitle(slug string) string {
	if slug == DefaultListingSlug {
		return "General Physician & Internal Medicine"
	}
	for _, s := range Specialties {
		if Slug(s) == slug {
			return s
		}
	}
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// DecodeDoctors reads a backend list payload. The backend answers either with a bare
// array or with an object wrapping the array under "doctors" or "data".
func DecodeDoctors(raw []byte) ([]Doctor, error) {
	var list []Doctor
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Doctors []Doctor `json:"doctors"`
		Data    []Doctor `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, ErrUnrecognizedPayload
	}
	switch {
	case wrapped.Doctors != nil:
		return wrapped.Doctors, nil
	case wrapped.Data != nil:
		return wrapped.Data, nil
	}
	return nil, ErrUnrecognizedPayload
}

// ExtractID finds the backend-assigned id in an add-doctor response.
func ExtractID(raw []byte) string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return ""
	}
	if id := idFrom(top); id != "" {
		return id
	}
	for _, k := range []string{"doctor", "data"} {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(top[k], &nested); err == nil {
			if id := idFrom(nested); id != "" {
				return id
			}
		}
	}
	return ""
}

func idFrom(m map[string]json.RawMessage) string {
	for _, k := range []string{"_id", "id"} {
		var s string
		if err := json.Unmarshal(m[k], &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// UnmarshalJSON accepts the backend's "_id" as the doctor id.
func (d *Doctor) UnmarshalJSON(b []byte) error {
	type plain Doctor
	var aux struct {
		plain
		MongoID json.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*d = Doctor(aux.plain)
	if d.ID == "" && len(aux.MongoID) > 0 {
		var id string
		if err := json.Unmarshal(aux.MongoID, &id); err == nil {
			d.ID = id
		}
	}
	return nil
}
