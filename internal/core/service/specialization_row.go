package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

// rowFields is the fixed arity of a specialization CSV row:
// id, created_at, updated_at, is_active_flag, name, slug, description.
const rowFields = 7

// specializationRow is one unpacked CSV row. The source id is carried for
// diagnostics only; the store assigns its own.
type specializationRow struct {
	SourceID    string
	CreatedAt   string
	UpdatedAt   string
	ActiveFlag  string
	Name        string `validate:"required,max=255"`
	Slug        string `validate:"max=255"`
	Description string
}

func unpackRow(record []string) (specializationRow, error) {
	if len(record) != rowFields {
		return specializationRow{}, &domain.RowUnpackError{Got: len(record), Want: rowFields}
	}
	return specializationRow{
		SourceID:    record[0],
		CreatedAt:   record[1],
		UpdatedAt:   record[2],
		ActiveFlag:  record[3],
		Name:        record[4],
		Slug:        record[5],
		Description: record[6],
	}, nil
}

// defaults builds the insert values for the row.
//
// The active flag is inverted: an "f" flag (any case) imports as active and
// every other value as inactive.
func (r specializationRow) defaults(owner *domain.User) (domain.SpecializationDefaults, error) {
	createdAt, err := parseTimestamp("created_at", r.CreatedAt)
	if err != nil {
		return domain.SpecializationDefaults{}, err
	}
	updatedAt, err := parseTimestamp("updated_at", r.UpdatedAt)
	if err != nil {
		return domain.SpecializationDefaults{}, err
	}

	description := r.Description
	if description == "" {
		description = domain.DefaultDescription
	}

	return domain.SpecializationDefaults{
		Owner:       owner,
		Slug:        r.Slug,
		Specialty:   specialtyFromSlug(r.Slug),
		Description: description,
		IsActive:    strings.ToLower(r.ActiveFlag) == "f",
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// specialtyFromSlug turns "general-medicine" into "General Medicine". A
// letter is upper-cased when the rune before it is not a cased letter and
// lower-cased otherwise, so "ear_nose" becomes "Ear_Nose" and "3d" "3D".
func specialtyFromSlug(slug string) string {
	var b strings.Builder
	prevCased := false
	for _, r := range strings.ReplaceAll(slug, "-", " ") {
		if prevCased {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToTitle(r))
		}
		prevCased = unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
	}
	return b.String()
}

// timestampPattern matches YYYY-MM-DD[T ]HH:MM[:SS[.ffffff]] with an optional
// Z, ±HH, ±HHMM or ±HH:MM zone. Month, day and time fields may have a single
// digit; fractional digits past the sixth are dropped.
var timestampPattern = regexp.MustCompile(
	`^(\d{4})-(\d{1,2})-(\d{1,2})[T ](\d{1,2}):(\d{1,2})` +
		`(?::(\d{1,2})(?:[.,](\d{1,6})\d{0,6})?)?` +
		`\s*(Z|[+-]\d{2}(?::?\d{2})?)?$`,
)

// parseTimestamp returns value in UTC. A value without a zone is read as UTC.
func parseTimestamp(field, value string) (time.Time, error) {
	invalid := &domain.TimestampParseError{Field: field, Value: value}

	m := timestampPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, invalid
	}

	year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
	hour, minute, second := atoi(m[4]), atoi(m[5]), atoi(m[6])
	micro := 0
	if frac := m[7]; frac != "" {
		micro = atoi(frac + strings.Repeat("0", 6-len(frac)))
	}

	if year < 1 || month < 1 || month > 12 || day < 1 || day > daysIn(year, month) ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, invalid
	}

	loc := time.UTC
	if tz := m[8]; tz != "" && tz != "Z" {
		offset := atoi(tz[1:3]) * 60
		if len(tz) > 3 {
			offset += atoi(tz[len(tz)-2:])
		}
		if offset >= 24*60 {
			return time.Time{}, invalid
		}
		if tz[0] == '-' {
			offset = -offset
		}
		loc = time.FixedZone("", offset*60)
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, second, micro*1000, loc)
	return ts.UTC(), nil
}

// atoi parses a regexp digit group; an empty group is 0.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
