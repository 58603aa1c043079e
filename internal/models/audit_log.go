package models

import "time"

// Audit actions
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
	ActionImport = "import"
)

// AuditLog is one append-only record of a user action against an entity.
// Entries are never mutated after creation; they are dropped oldest-first
// once the store exceeds its cap or an age-based purge runs.
type AuditLog struct {
	ID         string           `json:"id"`
	Timestamp  time.Time        `json:"timestamp"`
	UserID     int              `json:"user_id"`
	UserName   string           `json:"user_name"`
	Action     string           `json:"action"`
	Entity     string           `json:"entity"`
	EntityID   string           `json:"entity_id"`
	EntityName string           `json:"entity_name,omitempty"`
	Changes    *AuditLogChanges `json:"changes,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	IPAddress  string           `json:"ip_address,omitempty"`
	UserAgent  string           `json:"user_agent,omitempty"`
}

type AuditLogChanges struct {
	Before any `json:"before,omitempty"`
	After  any `json:"after,omitempty"`
}

// AuditLogFilter narrows a log query. All set predicates must match (AND);
// SearchQuery is a case-insensitive substring matched across entity name,
// action, entity type and user name (OR across those fields).
type AuditLogFilter struct {
	UserID      int        `json:"user_id,omitempty"`
	Action      string     `json:"action,omitempty"`
	Entity      string     `json:"entity,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// AuditLogStatistics aggregates the stored log set.
type AuditLogStatistics struct {
	Total      int            `json:"total"`
	ByAction   map[string]int `json:"by_action"`
	ByEntity   map[string]int `json:"by_entity"`
	ByUser     map[string]int `json:"by_user"`
	MostRecent []*AuditLog    `json:"most_recent"`
}
