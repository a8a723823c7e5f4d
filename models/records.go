package models

// AlertWindow is the per-tab display/scheduling configuration. Time tabs
// use StartTime; the yearly tab uses StartMonth/StartDay.
type AlertWindow struct {
	StartTime        string `json:"startTime,omitempty"` // "HH:MM"
	StartMonth       int    `json:"startMonth,omitempty"`
	StartDay         int    `json:"startDay,omitempty"`
	AutoResetEnabled bool   `json:"autoResetEnabled"`
	AutoResetTime    string `json:"autoResetTime,omitempty"` // "HH:MM"
	ShowOnHome       bool   `json:"showOnHome"`
}

// AutoResetState tracks the most recent auto-reset execution per tab.
// LastRunDate is a local-calendar "YYYY-MM-DD" string compared by exact
// equality, which bounds execution to once per tab per day.
type AutoResetState struct {
	LastRunDate string `json:"lastRunDate"`
}

// User is a worker record used for PIN lookup.
type User struct {
	Pin         string `json:"pin" validate:"required,min=4,max=6,numeric"`
	DisplayName string `json:"displayName" validate:"required"`
}

// Manager is a named manager code. Manager codes carry no length
// constraint and match by exact trimmed string equality.
type Manager struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Settings is the salon-scoped configuration record.
type Settings struct {
	AdminCode    string    `json:"adminCode,omitempty"`
	AdminPinHash string    `json:"adminPinHash,omitempty"`
	Managers     []Manager `json:"managers,omitempty"`
	OwnerName    string    `json:"ownerName,omitempty"`
	AdminName    string    `json:"adminName,omitempty"`
}
