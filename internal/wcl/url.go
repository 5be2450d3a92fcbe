package wcl

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
)

var (
	reportPathRegex = regexp.MustCompile(`/reports/([a-zA-Z0-9]+)`)
	fightHashRegex  = regexp.MustCompile(`fight=(\d+|last)`)
	bareCodeRegex   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// ErrInvalidReportURL is returned when no report code can be found.
var ErrInvalidReportURL = errors.New("invalid Warcraft Logs report URL")

// ReportRef identifies a report and optionally one fight in it.
type ReportRef struct {
	Code    string `json:"reportCode"`
	FightID int    `json:"fightId,omitempty"` // 0 when absent
	Last    bool   `json:"last,omitempty"`    // fight=last
}

// HasFight reports whether the reference names a fight.
func (r ReportRef) HasFight() bool {
	return r.FightID > 0 || r.Last
}

// ParseReportURL extracts the report code from /reports/<code> and the
// fight from #fight=N or ?fight=N. A bare report code is also accepted.
func ParseReportURL(raw string) (ReportRef, error) {
	if bareCodeRegex.MatchString(raw) {
		return ReportRef{Code: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ReportRef{}, ErrInvalidReportURL
	}

	m := reportPathRegex.FindStringSubmatch(u.Path)
	if m == nil {
		return ReportRef{}, ErrInvalidReportURL
	}
	ref := ReportRef{Code: m[1]}

	fight := ""
	if hm := fightHashRegex.FindStringSubmatch(u.Fragment); hm != nil {
		fight = hm[1]
	} else if q := u.Query().Get("fight"); q != "" {
		fight = q
	}

	switch fight {
	case "":
	case "last":
		ref.Last = true
	default:
		if id, err := strconv.Atoi(fight); err == nil && id > 0 {
			ref.FightID = id
		}
	}

	return ref, nil
}
