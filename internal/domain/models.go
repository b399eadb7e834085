// v0
// internal/domain/models.go
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies one month/year reporting window.
type Period struct {
	Month int
	Year  int
}

// ErrBadPeriod is returned when a period cannot be parsed or validated.
var ErrBadPeriod = errors.New("invalid reporting period")

// NewPeriod validates the month/year pair.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range", ErrBadPeriod, month)
	}
	if year < 2000 || year > 2200 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrBadPeriod, year)
	}
	return Period{Month: month, Year: year}, nil
}

// ParsePeriodLabel parses a "month/year" label such as "5/2026".
func ParsePeriodLabel(label string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(label), "/", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
	}
	return NewPeriod(month, year)
}

// Label renders the canonical "month/year" form used across the store
// collections.
func (p Period) Label() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

// Before reports whether p falls chronologically before other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Participants carries the per-role attendance counts of one period record.
// All counts are non-negative; present exceeding total is tolerated upstream
// and neutralized by the scorer.
type Participants struct {
	TotalAdministrators   int `json:"ttl_administrator"`
	PresentAdministrators int `json:"ptd_administrator"`
	TotalSubAdmins        int `json:"ttl_sub_administrator"`
	PresentSubAdmins      int `json:"ptd_sub_administrator"`
	TotalCoordinators     int `json:"ttl_coordinator"`
	PresentCoordinators   int `json:"ptd_coordinator"`
	TotalMembers          int `json:"ttl_member"`
	PresentMembers        int `json:"ptd_member"`
	TotalGuests           int `json:"ttl_gust"`
	PresentGuests         int `json:"ptd_gust"`
}

// MeetingItem is one agenda topic with its recorded discussion, already
// sanitized to plain text.
type MeetingItem struct {
	Topic      string   `json:"topic"`
	Discussion []string `json:"discussion"`
}

// PeriodRecord is one region's raw input for one reporting period as
// delivered by the upstream meeting backend.
type PeriodRecord struct {
	Date              time.Time     `json:"date"`
	Participants      Participants  `json:"participants"`
	Meetings          []MeetingItem `json:"meeting"`
	TotalTopics       int           `json:"number_of_topic"`
	TransferredTopics int           `json:"transferred_topic"`
}

// RegionScore is the aggregated result for one region in one scoring run.
// Rank is assigned once after every region in the run is aggregated.
type RegionScore struct {
	RegionID          int
	RegionName        string
	Period            Period
	MeetingScore      float64
	ParticipantsScore float64
	TotalScore        float64
	TotalTopics       int
	TransferredTopics int
	Rank              int
}

// RegionPrediction mirrors RegionScore for the next period; rank is computed
// over predicted totals.
type RegionPrediction struct {
	RegionID          int
	RegionName        string
	MeetingScore      float64
	ParticipantsScore float64
	TotalScore        float64
	TotalTopics       int
	TransferredTopics int
	Rank              int
}

// RegionError records a per-region failure surfaced in a run summary.
type RegionError struct {
	Region string `json:"region"`
	Err    string `json:"error"`
}

// RunSummary reports the outcome of one scoring or forecast run. A run with
// errors still counts as partial success.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Succeeded int           `json:"succeeded_count"`
	Skipped   int           `json:"skipped_count"`
	Errors    []RegionError `json:"errors"`
}

// AddError appends a per-region failure to the summary.
func (s *RunSummary) AddError(region string, err error) {
	s.Errors = append(s.Errors, RegionError{Region: region, Err: err.Error()})
}
