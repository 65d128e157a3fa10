package model

// PublicStats is exposed without authentication.
type PublicStats struct {
	TestsTaken int64 `json:"tests_taken"`
}

// DailyTypeCount is one row of the archived type distribution.
type DailyTypeCount struct {
	Day   string `json:"day"`
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// AdminStats aggregates live counters and archived history.
type AdminStats struct {
	TestsTaken   int64            `json:"tests_taken"`
	TypeCounts   map[string]int64 `json:"type_counts"`
	ArchiveDaily []DailyTypeCount `json:"archive_daily,omitempty"`
}

// AdminLoginRequest is the payload for the admin login endpoint.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required,min=6,max=128"`
}
