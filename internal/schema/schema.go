package schema

import "strings"

// Canonical column set for content-calendar payloads. Everything that
// validates, renders or documents the import shape reads from here.

const (
	ColTitle              = "title"
	ColDescription        = "description"
	ColCalendarDate       = "calendar_date"
	ColTimeSlot           = "time_slot"
	ColTargetPlatforms    = "target_platforms"
	ColHashtags           = "hashtags"
	ColMentions           = "mentions"
	ColMediaURLs          = "media_urls"
	ColPriority           = "priority"
	ColStatus             = "status"
	ColCampaignID         = "campaign_id"
	ColContentType        = "content_type"
	ColTargetAudience     = "target_audience"
	ColCallToAction       = "call_to_action"
	ColTrackingParameters = "tracking_parameters"
)

const (
	// ListDelimiter separates values inside multi-value cells.
	ListDelimiter = "|"

	MaxTitleLen = 200
	MaxFieldLen = 2000

	DefaultPriority = "medium"
	DefaultStatus   = "planned"
)

var Platforms = []string{"twitter", "linkedin", "facebook", "instagram", "youtube", "tiktok"}

var Priorities = []string{"urgent", "high", "medium", "low"}

var Statuses = []string{"planned", "ready", "scheduled", "published", "failed"}

var ContentTypes = []string{"promotional", "educational", "news", "personal", "engagement"}

type FieldType string

const (
	TypeString FieldType = "string"
	TypeDate   FieldType = "date"
	TypeTime   FieldType = "time"
	TypeEnum   FieldType = "enum"
	TypeList   FieldType = "list"
)

type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Enum        []string  `json:"enum,omitempty"`
	Default     string    `json:"default,omitempty"`
	Description string    `json:"description"`
	Example     string    `json:"example"`
}

var fields = []Field{
	{Name: ColTitle, Type: TypeString, Required: true, Description: "post title, up to 200 characters", Example: "Product launch teaser"},
	{Name: ColDescription, Type: TypeString, Description: "longer copy or internal notes", Example: "Countdown post with launch visual"},
	{Name: ColCalendarDate, Type: TypeDate, Required: true, Description: "publication date, YYYY-MM-DD", Example: "2024-12-27"},
	{Name: ColTimeSlot, Type: TypeTime, Required: true, Description: "publication time, HH:MM 24h", Example: "09:00"},
	{Name: ColTargetPlatforms, Type: TypeList, Required: true, Enum: Platforms, Description: "one or more platforms, | separated", Example: "linkedin|twitter"},
	{Name: ColHashtags, Type: TypeList, Description: "hashtags without #, | separated", Example: "launch|newproduct"},
	{Name: ColMentions, Type: TypeList, Description: "account handles to mention, | separated", Example: "@partnerco"},
	{Name: ColMediaURLs, Type: TypeList, Description: "image or video urls, | separated", Example: "https://cdn.example.com/teaser.png"},
	{Name: ColPriority, Type: TypeEnum, Enum: Priorities, Default: DefaultPriority, Description: "scheduling priority", Example: "high"},
	{Name: ColStatus, Type: TypeEnum, Enum: Statuses, Default: DefaultStatus, Description: "workflow status", Example: "planned"},
	{Name: ColCampaignID, Type: TypeString, Description: "campaign this entry belongs to", Example: "q4-launch"},
	{Name: ColContentType, Type: TypeEnum, Enum: ContentTypes, Description: "editorial category", Example: "promotional"},
	{Name: ColTargetAudience, Type: TypeString, Description: "audience note", Example: "B2B decision makers"},
	{Name: ColCallToAction, Type: TypeString, Description: "CTA text", Example: "Sign up for early access"},
	{Name: ColTrackingParameters, Type: TypeString, Description: "UTM or other tracking suffix", Example: "utm_source=social&utm_campaign=q4"},
}

var requiredColumns = []string{ColTitle, ColCalendarDate, ColTimeSlot, ColTargetPlatforms}

func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Columns returns the canonical column order used by exports and
// templates.
func Columns() []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func RequiredColumns() []string {
	out := make([]string, len(requiredColumns))
	copy(out, requiredColumns)
	return out
}

func IsKnownColumn(name string) bool {
	name = Normalize(name)
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Normalize canonicalizes a column name: trimmed, lowered, spaces and
// dashes folded to underscores.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

func inSet(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

func IsPlatform(value string) bool    { return inSet(Platforms, value) }
func IsPriority(value string) bool    { return inSet(Priorities, value) }
func IsStatus(value string) bool      { return inSet(Statuses, value) }
func IsContentType(value string) bool { return inSet(ContentTypes, value) }
