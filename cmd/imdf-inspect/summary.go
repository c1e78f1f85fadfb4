package main

import (
	"golang.org/x/text/language"

	"github.com/hupe1980/imdf"
)

type levelSummary struct {
	ID        string `json:"id"`
	Ordinal   int    `json:"ordinal"`
	ShortName string `json:"shortName"`
	Outdoor   bool   `json:"outdoor"`
	Units     int    `json:"units"`
	Openings  int    `json:"openings"`
	Occupants int    `json:"occupants"`
	Amenities int    `json:"amenities"`
}

type countSummary struct {
	Levels                int `json:"levels"`
	Units                 int `json:"units"`
	Openings              int `json:"openings"`
	Amenities             int `json:"amenities"`
	Occupants             int `json:"occupants"`
	Anchors               int `json:"anchors"`
	SkippedAmenityUnits   int `json:"skippedAmenityUnits"`
	UnassociatedOccupants int `json:"unassociatedOccupants"`
}

type summary struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Ordinals []int          `json:"ordinals"`
	Levels   []levelSummary `json:"levels"`
	Counts   countSummary   `json:"counts"`
}

func summarize(v *imdf.Venue, preferred ...language.Tag) summary {
	stats := v.Stats()

	s := summary{
		ID:       v.Identifier.String(),
		Name:     v.Properties.Name.Best(preferred...),
		Category: v.Properties.Category,
		Ordinals: v.Ordinals(),
		Levels:   make([]levelSummary, 0, stats.Levels),
		Counts:   countSummary(stats),
	}

	for _, l := range v.Levels() {
		ls := levelSummary{
			ID:        l.Identifier.String(),
			Ordinal:   l.Properties.Ordinal,
			ShortName: l.Properties.ShortName.Best(preferred...),
			Outdoor:   l.Properties.Outdoor,
			Units:     len(l.Units),
			Openings:  len(l.Openings),
		}
		for _, u := range l.Units {
			ls.Occupants += len(u.Occupants)
			ls.Amenities += len(u.Amenities)
		}
		s.Levels = append(s.Levels, ls)
	}

	return s
}
