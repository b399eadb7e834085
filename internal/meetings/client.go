// v0
// internal/meetings/client.go
package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Salmankotakuth/ai-tanmiya/internal/breaker"
	"github.com/Salmankotakuth/ai-tanmiya/internal/domain"
)

// Client fetches raw per-region meeting payloads from the upstream backend.
type Client struct {
	base  string
	token string
	log   *slog.Logger
	h     *breaker.HTTPClient
}

// NewClient wires a backend client behind the supplied breaker-wrapped HTTP
// client. The logger should already be component-scoped by the caller.
func NewClient(baseURL, token string, log *slog.Logger, h *breaker.HTTPClient) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		log:   log,
		h:     h,
	}
}

type wireMeeting struct {
	Topic      string          `json:"topic"`
	Discussion json.RawMessage `json:"discussion"`
}

type wireRecord struct {
	Date              string              `json:"date"`
	Participants      domain.Participants `json:"participants"`
	Meeting           []wireMeeting       `json:"meeting"`
	NumberOfTopics    int                 `json:"number_of_topic"`
	TransferredTopics int                 `json:"transferred_topic"`
}

type wireEnvelope struct {
	ResponseBody []wireRecord `json:"ResponseBody"`
}

// FetchRegion retrieves all period records for one region. An empty or absent
// body means "no data for this region this period" and yields a nil slice,
// not an error. Discussion text is sanitized to plain strings before return.
func (c *Client) FetchRegion(ctx context.Context, period domain.Period, regionID int) ([]domain.PeriodRecord, error) {
	q := url.Values{}
	q.Set("Month", strconv.Itoa(period.Month))
	q.Set("Year", strconv.Itoa(period.Year))
	q.Set("RegionId", strconv.Itoa(regionID))
	endpoint := fmt.Sprintf("%s/GetMeetingDetailList?%s", c.base, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend fetch region %d: %w", regionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("backend http %d: %s", resp.StatusCode, string(b))
	}

	var env wireEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("backend decode region %d: %w", regionID, err)
	}
	if len(env.ResponseBody) == 0 {
		return nil, nil
	}

	out := make([]domain.PeriodRecord, 0, len(env.ResponseBody))
	for _, w := range env.ResponseBody {
		out = append(out, domain.PeriodRecord{
			Date:              parseBackendDate(w.Date),
			Participants:      w.Participants,
			Meetings:          sanitizeMeetings(w.Meeting),
			TotalTopics:       w.NumberOfTopics,
			TransferredTopics: w.TransferredTopics,
		})
	}
	c.log.Info("backend_region_fetched",
		slog.Int("region_id", regionID),
		slog.String("period", period.Label()),
		slog.Int("records", len(out)),
	)
	return out, nil
}

// sanitizeMeetings normalizes the discussion field, which arrives either as a
// single HTML string or a list of them.
func sanitizeMeetings(items []wireMeeting) []domain.MeetingItem {
	out := make([]domain.MeetingItem, 0, len(items))
	for _, m := range items {
		out = append(out, domain.MeetingItem{
			Topic:      StripHTML(m.Topic),
			Discussion: decodeDiscussion(m.Discussion),
		})
	}
	return out
}

func decodeDiscussion(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if cleaned := StripHTML(one); cleaned != "" {
			return []string{cleaned}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil
	}
	out := make([]string, 0, len(many))
	for _, d := range many {
		if cleaned := StripHTML(d); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func parseBackendDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if i := strings.IndexByte(raw, 'T'); i > 0 {
		raw = raw[:i]
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
