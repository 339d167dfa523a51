package models

// ItemListResponse is a page of items
type ItemListResponse struct {
	Items   []Item `json:"items"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	HasNext bool   `json:"has_next"`
	HasPrev bool   `json:"has_prev"`
}

// ClaimListResponse is a page of claims
type ClaimListResponse struct {
	Claims  []ClaimRequest `json:"claims"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// ProfileListResponse is a page of profiles
type ProfileListResponse struct {
	Users   []Profile `json:"users"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// DisputeListResponse is a page of disputes
type DisputeListResponse struct {
	Disputes []Dispute `json:"disputes"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}

// AdminActionListResponse is a page of the admin action ledger
type AdminActionListResponse struct {
	Actions []AdminAction `json:"actions"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// FlaggedContentResponse is a page of the flagged content queue
type FlaggedContentResponse struct {
	FlaggedContent []FlaggedContent `json:"flagged_content"`
	Total          int              `json:"total"`
	Page           int              `json:"page"`
	PerPage        int              `json:"per_page"`
}

// NotificationListResponse is a page of a user's notifications
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int64          `json:"unread"`
	Page          int            `json:"page"`
	PerPage       int            `json:"per_page"`
}

// DashboardStats holds the per-user counters shown on the dashboard
type DashboardStats struct {
	TotalItemsPosted int     `json:"total_items_posted"`
	ItemsRecovered   int     `json:"items_recovered"`
	HelpingOthers    int     `json:"helping_others"`
	SuccessRate      float64 `json:"success_rate"`
}

// DashboardData is the body of GET /dashboard
type DashboardData struct {
	Stats         DashboardStats `json:"stats"`
	RecentItems   []Item         `json:"recent_items"`
	ClaimRequests []ClaimRequest `json:"claim_requests"`
}

// AdminStats is the body of GET /admin/stats
type AdminStats struct {
	TotalUsers    int64   `json:"total_users"`
	ActiveItems   int64   `json:"active_items"`
	ResolvedItems int64   `json:"resolved_items"`
	PendingClaims int64   `json:"pending_claims"`
	SuccessRate   float64 `json:"success_rate"`
	TotalItems    int64   `json:"total_items"`
}

// PlatformHealth is part of the admin analytics
type PlatformHealth struct {
	TotalItems   int64   `json:"total_items"`
	ActiveItems  int64   `json:"active_items"`
	FlaggedItems int64   `json:"flagged_items"`
	HealthScore  float64 `json:"health_score"`
}

// Analytics is the body of GET /admin/analytics
type Analytics struct {
	Timeframe      string          `json:"timeframe"`
	NewUsers       int64           `json:"new_users"`
	NewItems       int64           `json:"new_items"`
	LostItems      int64           `json:"lost_items"`
	FoundItems     int64           `json:"found_items"`
	NewClaims      int64           `json:"new_claims"`
	ApprovedClaims int64           `json:"approved_claims"`
	PlatformHealth PlatformHealth  `json:"platform_health"`
	Categories     []CategoryCount `json:"categories"`
}

// CategoryCount is the number of items in one category
type CategoryCount struct {
	Category ItemCategory `json:"category" bson:"_id"`
	Count    int64        `json:"count" bson:"count"`
}

// UploadResponse is the body of POST /upload
type UploadResponse struct {
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
	Path      string `json:"path"`
}
