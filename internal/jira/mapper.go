package jira

import (
	"github.com/rs/zerolog/log"
)

// MapIssue transforms a Jira DTO into a Record, keeping only status changes. Every status
// item of a history entry becomes its own changelog entry stamped with the history date.
func MapIssue(item IssueDTO) Record {
	rec := Record{
		Key:          item.Key,
		CreatedAt:    item.Fields.Created,
		CurrentLabel: item.Fields.Status.Name,
		Changelog:    []ChangelogEntry{},
	}

	if item.Fields.ResolutionDate != "" {
		resolved := item.Fields.ResolutionDate
		rec.ResolvedAt = &resolved
	}

	if item.Changelog == nil {
		return rec
	}

	for _, h := range item.Changelog.Histories {
		for _, itm := range h.Items {
			if itm.Field != StatusField {
				continue
			}
			entry := ChangelogEntry{
				Timestamp: h.Created,
				Field:     StatusField,
				ToLabel:   itm.ToString,
			}
			if itm.FromString != nil {
				from := *itm.FromString
				entry.FromLabel = &from
			}
			rec.Changelog = append(rec.Changelog, entry)
		}
	}

	return rec
}

// MapSearchResponse maps every issue of a search page to a Record.
func MapSearchResponse(resp SearchResponse) []Record {
	records := make([]Record, 0, len(resp.Issues))
	for _, item := range resp.Issues {
		records = append(records, MapIssue(item))
	}
	if resp.Total > len(resp.Issues) {
		log.Warn().
			Int("total", resp.Total).
			Int("received", len(resp.Issues)).
			Msg("Search response is a partial page; metrics cover the received issues only")
	}
	return records
}
