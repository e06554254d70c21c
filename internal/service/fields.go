package service

import (
	"github.com/postloop/postloop/internal/csvio"
	"github.com/postloop/postloop/internal/model"
	"github.com/postloop/postloop/internal/schema"
)

// entryField renders one schema column of an entry in its CSV cell
// form. Identity-key matching and export rendering both go through
// here so the two always agree.
func entryField(e *model.Entry, col string) string {
	switch col {
	case schema.ColTitle:
		return e.Title
	case schema.ColDescription:
		return e.Description
	case schema.ColCalendarDate:
		return e.CalendarDate
	case schema.ColTimeSlot:
		return e.TimeSlot
	case schema.ColTargetPlatforms:
		return csvio.JoinList(e.Platforms)
	case schema.ColHashtags:
		return csvio.JoinList(e.Hashtags)
	case schema.ColMentions:
		return csvio.JoinList(e.Mentions)
	case schema.ColMediaURLs:
		return csvio.JoinList(e.MediaURLs)
	case schema.ColPriority:
		return e.Priority
	case schema.ColStatus:
		return e.Status
	case schema.ColCampaignID:
		return e.CampaignID
	case schema.ColContentType:
		return e.ContentType
	case schema.ColTargetAudience:
		return e.TargetAudience
	case schema.ColCallToAction:
		return e.CallToAction
	case schema.ColTrackingParameters:
		return e.TrackingParameters
	}
	return ""
}
