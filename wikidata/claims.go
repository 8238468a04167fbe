package wikidata

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Property ids used by the game.
const (
	PropDateOfBirth = "P569"
	PropDateOfDeath = "P570"
	PropImage       = "P18"
)

// Claims maps a property id to its statements.
type Claims map[string][]Claim

type Claim struct {
	Mainsnak struct {
		Datavalue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

type timeValue struct {
	Time string `json:"time"`
}

// dates look like "+1990-05-15T00:00:00Z"
var stampPattern = regexp.MustCompile(`\+(\d{4})-(\d{2})-(\d{2})`)

func (c Claims) Has(prop string) bool {
	_, ok := c[prop]
	return ok
}

// IsLiving reports whether the entity has a birth date and no death date.
func (c Claims) IsLiving() bool {
	return c.Has(PropDateOfBirth) && !c.Has(PropDateOfDeath)
}

// DateStamp returns the YYYY-MM-DD part of the first time statement of prop,
// or "" when absent or unparsable.
func (c Claims) DateStamp(prop string) string {
	stmts := c[prop]
	if len(stmts) == 0 {
		return ""
	}
	var v timeValue
	if err := json.Unmarshal(stmts[0].Mainsnak.Datavalue.Value, &v); err != nil {
		return ""
	}
	m := stampPattern.FindStringSubmatch(v.Time)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

// Date parses the first time statement of prop. Year-only or month-only
// precision is stored with 00 fields, which are read as 01.
func (c Claims) Date(prop string) (time.Time, bool) {
	return ParseDateStamp(c.DateStamp(prop))
}

// ParseDateStamp parses a YYYY-MM-DD stamp, reading 00 month or day as 01.
func ParseDateStamp(stamp string) (time.Time, bool) {
	parts := strings.Split(stamp, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil || m > 12 || d > 31 {
		return time.Time{}, false
	}
	if m == 0 {
		m = 1
	}
	if d == 0 {
		d = 1
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// Image returns the file name of the first image statement with spaces
// replaced by underscores, or "".
func (c Claims) Image() string {
	stmts := c[PropImage]
	if len(stmts) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(stmts[0].Mainsnak.Datavalue.Value, &name); err != nil {
		return ""
	}
	return strings.ReplaceAll(name, " ", "_")
}
