package records

import (
	"fmt"

	"github.com/rism-digital/muscatplus-indexer/dates"
	"github.com/rism-digital/muscatplus-indexer/marc"
	"github.com/rism-digital/muscatplus-indexer/profile"
	"github.com/rism-digital/muscatplus-indexer/solr"
)

// NewSources builds the document builder for source records. A printed
// source row may carry attached holding blobs, which expand into one holding
// document each alongside the source document itself.
func NewSources(svc Services) (*Builder, error) {
	reg := profile.Registry{
		"record_id":           recordID,
		"creator_name":        creatorName,
		"holding_institution": institutionLink(svc),
		"scoring_summary":     scoringSummary,
		"date_ranges":         dateRanges(svc),
	}
	holdings, err := NewHoldings(svc)
	if err != nil {
		return nil, err
	}
	return newBuilder(svc, "source", "sources.yml", reg, attachedHoldings(holdings))
}

// attachedHoldings expands the holdings column of a printed source into
// child documents, applying the holdings profile to each blob.
func attachedHoldings(h *Builder) expandFunc {
	return func(c *profile.Context) ([]solr.Document, error) {
		blob, _ := c.Row["holdings_marc"].(string)
		if blob == "" {
			return nil, nil
		}
		var out []solr.Document
		for i, part := range splitBlobs(blob) {
			rec, err := marc.Parse(part)
			if err != nil {
				return nil, err
			}
			kc := &profile.Context{
				RecordID: fmt.Sprintf("holding_%s_%d", c.Row.ID(), i+1),
				Record:   rec,
				Row:      c.Row,
			}
			doc, err := h.engine.Apply(h.profile, kc)
			if err != nil {
				return nil, err
			}
			doc["source_ref"] = c.RecordID
			out = append(out, doc)
		}
		return out, nil
	}
}

// creatorName renders "Name (dates)" from the 100 field.
func creatorName(c *profile.Context) (any, error) {
	name, ok := marc.First(c.Record, "100", 'a')
	if !ok {
		return nil, nil
	}
	if life, ok := marc.First(c.Record, "100", 'd'); ok {
		return name + " (" + life + ")", nil
	}
	return name, nil
}

// scoringSummary collects the scoring fields into a structured list for
// nested serialization.
func scoringSummary(c *profile.Context) (any, error) {
	var out []map[string]string
	for _, f := range c.Record.All("594") {
		inst, ok := f.Subfield('b')
		if !ok {
			continue
		}
		entry := map[string]string{"instrument": inst}
		if n, ok := f.Subfield('c'); ok {
			entry["count"] = n
		}
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// dateRanges normalizes every date statement on the record and returns the
// outermost resolved bounds.
func dateRanges(svc Services) profile.Extractor {
	return func(c *profile.Context) (any, error) {
		var lo, hi *int
		for _, stmt := range marc.Every(c.Record, "260", 'c', false) {
			r := svc.Dates.Normalize(stmt)
			if r.Start != nil && (lo == nil || *r.Start < *lo) {
				lo = r.Start
			}
			if r.End != nil && (hi == nil || *r.End > *hi) {
				hi = r.End
			}
		}
		return yearsOf(dates.YearRange{Start: lo, End: hi}), nil
	}
}

// institutionLink resolves the holding institution's siglum to its document
// id through the cross-source link table.
func institutionLink(svc Services) profile.Extractor {
	return func(c *profile.Context) (any, error) {
		siglum, ok := marc.First(c.Record, "852", 'a')
		if !ok {
			siglum, _ = c.Row["siglum"].(string)
		}
		if siglum == "" || svc.Links == nil {
			return nil, nil
		}
		if id, found := svc.Links.Get(siglum); found {
			return id, nil
		}
		return nil, nil
	}
}
