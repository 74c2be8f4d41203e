package transport

import (
	"strings"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/board"
)

// DateLayout is the wire format of deferred dates.
const DateLayout = "2006-01-02"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Name     *string `json:"name"`
	Theme    *string `json:"theme"`
	Language *string `json:"language"`
}

type TaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Tags         []string   `json:"tags"`
	Deadline     *time.Time `json:"deadline"`
	Priority     string     `json:"priority"`
	DeferredDate string     `json:"deferred_date"`
}

// TaskPatchRequest is a partial edit. Absent and blank fields keep their value.
type TaskPatchRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Tags         *[]string  `json:"tags"`
	Deadline     *time.Time `json:"deadline"`
	Priority     *string    `json:"priority"`
	Status       *string    `json:"status"`
	DeferredDate *string    `json:"deferred_date"`
}

// Patch converts the request into a domain patch. Deferred dates are read in loc.
func (r TaskPatchRequest) Patch(loc *time.Location) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		Deadline:    r.Deadline,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		patch.Status = &s
	}
	if r.DeferredDate != nil {
		date, err := ParseDate(*r.DeferredDate, loc)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.DeferredDate = date
	}
	return patch, nil
}

type StatusRequest struct {
	Status string `json:"status"`
}

type OrderRequest struct {
	IDs []string `json:"ids"`
}

// BoardEventRequest is one drag library callback. Type selects the command; Status is only
// read by click_lock.
type BoardEventRequest struct {
	Type   string      `json:"type"`
	Active board.Item  `json:"active"`
	Over   *board.Item `json:"over"`
	Status string      `json:"status"`
}

// ParseDate reads a calendar date, or a full RFC 3339 timestamp truncated to its day, in
// loc. A blank value yields nil.
func ParseDate(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalidf("invalid date %q", raw)
	}
	day := domain.DateOnly(t.In(loc))
	return &day, nil
}

// SplitList parses a comma separated query value.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
