// Package priority maps the demand for a resource to a notification
// priority between 1 and 5.
package priority

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	MinLevel = 1
	MaxLevel = 5

	// HighLevel and above triggers the audit alert instead of the regular
	// admin notification
	HighLevel = 4

	// Bonuses never push a resource past this level, only repeat requests can
	bonusCap = 4

	longStandingDays = 14
)

var ErrInvalidInput = errors.New("invalid priority input")

// Keywords in the resource path that point at high intent content
var highValueKeywords = []string{
	"pricing",
	"proposal",
	"playbook",
	"template",
	"case-stud",
	"audit",
	"negotiation",
}

type Input struct {
	// How many times the resource was requested, including this request
	RequestCount int64
	// Days since the resource was requested for the first time
	DaysSinceFirst int
	ResourceURL    string
	SourceURL      string
}

type Factor struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Detail string `json:"detail"`
}

type Result struct {
	Level   int      `json:"level"`
	Factors []Factor `json:"factors"`
}

// High reports whether the result should be escalated
func (r Result) High() bool {
	return r.Level >= HighLevel
}

// Calculate computes the level for a resource. The level never goes down
// when RequestCount or DaysSinceFirst go up for the same URLs.
func Calculate(in Input) (Result, error) {
	if in.RequestCount < 0 {
		return Result{}, fmt.Errorf("%w: negative request count %d", ErrInvalidInput, in.RequestCount)
	}

	if in.DaysSinceFirst < 0 {
		return Result{}, fmt.Errorf("%w: negative age %d", ErrInvalidInput, in.DaysSinceFirst)
	}

	base := baseLevel(in.RequestCount)
	res := Result{
		Level: base,
		Factors: []Factor{{
			Name:   "repeat_requests",
			Weight: base,
			Detail: fmt.Sprintf("%d request(s)", in.RequestCount),
		}},
	}

	if base < bonusCap {
		if kw := highValueKeyword(in.ResourceURL); kw != "" {
			res.add(Factor{Name: "high_value_resource", Weight: 1, Detail: "path mentions " + kw})
		}

		if in.DaysSinceFirst >= longStandingDays && in.RequestCount >= 2 {
			res.add(Factor{
				Name:   "long_standing_demand",
				Weight: 1,
				Detail: fmt.Sprintf("first requested %d days ago", in.DaysSinceFirst),
			})
		}
	}

	switch src := hostOf(in.SourceURL); {
	case strings.TrimSpace(in.SourceURL) == "":
		res.Factors = append(res.Factors, Factor{Name: "direct_request", Detail: "no referring page"})
	case src != "" && src != hostOf(in.ResourceURL):
		res.Factors = append(res.Factors, Factor{Name: "external_referral", Detail: "referred from " + src})
	}

	return res, nil
}

func (r *Result) add(f Factor) {
	r.Factors = append(r.Factors, f)
	r.Level = min(r.Level+f.Weight, bonusCap)
}

func baseLevel(count int64) int {
	switch {
	case count >= 10:
		return 5
	case count >= 5:
		return 4
	case count >= 3:
		return 3
	case count == 2:
		return 2
	default:
		return MinLevel
	}
}

func highValueKeyword(raw string) string {
	path := strings.ToLower(raw)
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		path = strings.ToLower(u.Path)
	}

	for _, kw := range highValueKeywords {
		if strings.Contains(path, kw) {
			return kw
		}
	}

	return ""
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
