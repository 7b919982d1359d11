package models

// StorageQuota holds the account-level byte counters as reported by the
// server. The client never derives Used by summing file sizes; both fields
// come from /api/dashboard/stats so the pair is always from one server state.
type StorageQuota struct {
	Used  int64 `json:"storage_used"`
	Limit int64 `json:"storage_limit"`
}

// Percentage returns Used/Limit as a percentage clamped to [0, 100] for
// display. The raw counters may transiently exceed the limit right after an
// upload that has not been reconciled yet; the clamp is display-only.
func (q StorageQuota) Percentage() float64 {
	if q.Limit <= 0 {
		return 0
	}
	pct := float64(q.Used) / float64(q.Limit) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// DashboardStats is the response of GET /api/dashboard/stats.
type DashboardStats struct {
	TotalFiles    int   `json:"total_files"`
	TotalFolders  int   `json:"total_folders"`
	SharedFiles   int   `json:"shared_files"`
	RecentUploads int   `json:"recent_uploads"`
	StorageUsed   int64 `json:"storage_used"`
	StorageLimit  int64 `json:"storage_limit"`
}

// Quota projects the stats response onto the quota counters.
func (s DashboardStats) Quota() StorageQuota {
	return StorageQuota{Used: s.StorageUsed, Limit: s.StorageLimit}
}
