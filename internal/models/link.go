package models

// PlaceholderURL is the sentinel some deployments store for a link
// whose URL was never filled in. Such links are skipped by probes.
const PlaceholderURL = "https://xx"

type LinkStatus string

const (
	StatusUnknown  LinkStatus = "unknown"
	StatusActive   LinkStatus = "active"
	StatusInactive LinkStatus = "inactive"
	StatusError    LinkStatus = "error"
)

// Link is one monitored subscription endpoint. The whole list is
// persisted as a single JSON blob under the subscription_links key.
type Link struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
	Status      LinkStatus `json:"status"`
	LastChecked string     `json:"lastChecked,omitempty"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
}

// Configured reports whether the link has a real probe target.
func (l Link) Configured() bool {
	return l.URL != "" && l.URL != PlaceholderURL
}

// NormalizeStatus coerces unrecognized persisted statuses to unknown.
func (l *Link) NormalizeStatus() {
	switch l.Status {
	case StatusActive, StatusInactive, StatusError:
	default:
		l.Status = StatusUnknown
	}
}

// CheckResult is a single entry of the on-demand health check. It is
// never persisted; the scheduled monitor is the only writer of status.
type CheckResult struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Active       bool   `json:"active"`
	Status       int    `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
	LastModified string `json:"lastModified"`
}
