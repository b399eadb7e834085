// v0
// internal/store/records.go
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRecord flags a remote record that failed parse/validate on
// read. The reconciliation engine treats it as fatal for the collection batch
// because create-vs-update cannot be decided over unparseable state.
var ErrMalformedRecord = errors.New("malformed remote record")

// RemoteID is the store-assigned record identifier. It is opaque to this
// service and independent of region identifiers; on the wire it may be a JSON
// number or a string.
type RemoteID string

// UnmarshalJSON accepts either representation.
func (id *RemoteID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = RemoteID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = RemoteID(n.String())
	return nil
}

// MarshalJSON re-emits numeric identifiers as numbers so patches round-trip.
func (id RemoteID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// SnapshotRecord is the wire shape shared by the current-snapshot and
// history collections. Field names match the remote collections exactly.
type SnapshotRecord struct {
	ID                RemoteID `json:"id,omitempty"`
	Region            string   `json:"Region"`
	RegionID          int      `json:"Region_id"`
	Month             string   `json:"month"`
	MeetingScore      float64  `json:"meeting_score"`
	ParticipantsScore float64  `json:"participants_score"`
	TotalScore        float64  `json:"total_score"`
	TotalTopics       int      `json:"total_topics"`
	TransferredTopics int      `json:"transferred_topics"`
	Rank              int      `json:"Rank"`
	RunID             string   `json:"run_id,omitempty"`
	DateCreated       string   `json:"date_created,omitempty"`
}

// Validate enforces the minimum shape a snapshot must have to participate in
// reconciliation or forecasting.
func (r SnapshotRecord) Validate() error {
	if r.RegionID <= 0 {
		return fmt.Errorf("%w: non-positive Region_id %d", ErrMalformedRecord, r.RegionID)
	}
	if strings.TrimSpace(r.Month) == "" {
		return fmt.Errorf("%w: empty month for Region_id %d", ErrMalformedRecord, r.RegionID)
	}
	return nil
}

// PredictionRecord is the wire shape of the predictions collection.
type PredictionRecord struct {
	ID                RemoteID `json:"id,omitempty"`
	Region            string   `json:"Region"`
	RegionID          int      `json:"Region_id"`
	MeetingScore      float64  `json:"meeting_score"`
	ParticipantsScore float64  `json:"participants_score"`
	TotalScore        float64  `json:"total_score"`
	TotalTopics       int      `json:"total_topics"`
	TransferredTopics int      `json:"transferred_topics"`
	Rank              int      `json:"Rank"`
	RunID             string   `json:"run_id,omitempty"`
}

// Validate mirrors SnapshotRecord.Validate for the predictions collection.
func (r PredictionRecord) Validate() error {
	if r.RegionID <= 0 {
		return fmt.Errorf("%w: non-positive Region_id %d", ErrMalformedRecord, r.RegionID)
	}
	return nil
}

// ReportRecord is the wire shape of the narrative report collection.
type ReportRecord struct {
	ID       RemoteID `json:"id,omitempty"`
	Region   string   `json:"Region"`
	RegionID int      `json:"Region_id"`
	Month    string   `json:"month"`
	Report   string   `json:"report"`
	ReportAr string   `json:"report_ar"`
	Mail     string   `json:"mail"`
	RunID    string   `json:"run_id,omitempty"`
}

func parseSnapshot(raw json.RawMessage) (SnapshotRecord, error) {
	var rec SnapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return SnapshotRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := rec.Validate(); err != nil {
		return SnapshotRecord{}, err
	}
	return rec, nil
}

func parsePrediction(raw json.RawMessage) (PredictionRecord, error) {
	var rec PredictionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return PredictionRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := rec.Validate(); err != nil {
		return PredictionRecord{}, err
	}
	return rec, nil
}
