package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultDescription replaces a blank description on import.
const DefaultDescription = "No description available."

var ErrSpecializationNotFound = errors.New("specialization not found")
var ErrDuplicateSlug = errors.New("specialization slug already exists")

// Specialization is a medical specialization owned by a user.
type Specialization struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Specialty   string    `json:"specialty"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SpecializationDefaults are the values written when a find-or-create call
// inserts a new record. They are ignored when a record with the name exists.
type SpecializationDefaults struct {
	Owner       *User
	Slug        string
	Specialty   string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts a name into a URL slug: ASCII-folded, lowercase, with
// runs of whitespace and hyphens collapsed into a single hyphen.
//
//	"Général  Medicine!" → "general-medicine"
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	out := strings.ToLower(b.String())
	out = slugStrip.ReplaceAllString(out, "")
	out = slugCollapse.ReplaceAllString(out, "-")
	return strings.Trim(out, "-_")
}
