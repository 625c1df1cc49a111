// Package batchimport merges tabular exports of book lists into the
// store without duplicating existing entries, using scraping and identity
// verification to refine each candidate before insertion.
package batchimport

import (
	"math/rand"
	"time"

	"github.com/hsinyu-chen/novelshelf/internal/entities"
)

// Source labels for the two supported CSV layouts.
const (
	SourceGamingCSV   = "Gaming_CSV"
	SourceBooklistCSV = "Booklist_CSV"
)

// Source values stored on records whose page could not be verified:
// the fields came from the CSV, not a live page.
const (
	SourceCSVImport = "CSV匯入"
	SourceEggKept   = "Egg (保留)"
)

// Candidate is one row of an external book list, normalized to a common
// shape. It exists only to be reconciled against existing records.
type Candidate struct {
	Title           string
	Author          string
	URL             string
	DescriptionText string
	UserRating      int
	Status          entities.ReadingStatus
	Tags            []string
	OriginalSource  string
	CompletedDate   *time.Time
}

// DateStrategy selects how completion dates are backfilled for legacy
// rows that lack one. This is an explicit configuration switch, never
// auto-inferred.
type DateStrategy string

const (
	DateStrategyNone   DateStrategy = "none"
	DateStrategyFixed  DateStrategy = "fixed"
	DateStrategyRandom DateStrategy = "random"
)

// ParseDateStrategy maps a config string to a DateStrategy, defaulting
// to none.
func ParseDateStrategy(s string) DateStrategy {
	switch DateStrategy(s) {
	case DateStrategyFixed, DateStrategyRandom:
		return DateStrategy(s)
	default:
		return DateStrategyNone
	}
}

// legacyDate returns the backfill completion date for the strategy:
// nothing, a fixed year-end date, or a random day within the year.
func (s DateStrategy) legacyDate(year int) *time.Time {
	switch s {
	case DateStrategyFixed:
		d := time.Date(year, 12, 31, 0, 0, 0, 0, time.Local)
		return &d
	case DateStrategyRandom:
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		d := start.AddDate(0, 0, rand.Intn(364))
		return &d
	default:
		return nil
	}
}
