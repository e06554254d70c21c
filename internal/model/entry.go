package model

// Entry is one content-calendar record. CalendarDate and TimeSlot stay
// in their wire form (YYYY-MM-DD / HH:MM) so CSV round-trips are exact.
type Entry struct {
	ID                 string   `json:"id"`
	TenantID           string   `json:"tenant_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	CalendarDate       string   `json:"calendar_date"`
	TimeSlot           string   `json:"time_slot"`
	Platforms          []string `json:"target_platforms"`
	Hashtags           []string `json:"hashtags,omitempty"`
	Mentions           []string `json:"mentions,omitempty"`
	MediaURLs          []string `json:"media_urls,omitempty"`
	Priority           string   `json:"priority"`
	Status             string   `json:"status"`
	CampaignID         string   `json:"campaign_id,omitempty"`
	ContentType        string   `json:"content_type,omitempty"`
	TargetAudience     string   `json:"target_audience,omitempty"`
	CallToAction       string   `json:"call_to_action,omitempty"`
	TrackingParameters string   `json:"tracking_parameters,omitempty"`
	Ctime              int64    `json:"ctime"`
	Mtime              int64    `json:"mtime"`
}
