// Package fql builds FQL query strings for the analytics service.
//
// The produced subset is SELECT / WHERE / GROUP BY over the fixed
// "hermes" event table: summed transaction amount grouped by merchant
// identifier, filtered to one calendar day (day, month and year are
// decomposed into separate predicates), an optional hour of day, and
// the fixed success event-type allow-list.
package fql

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Table is the logical event table every query reads from.
	Table = "hermes"

	// MerchantColumn is the grouping key; it is also the default
	// merchant column assumed during normalization.
	MerchantColumn = "eventData.merchantId"

	amountColumn = "eventData.amount"
)

// successEventTypes is the fixed allow-list of event types counted as
// processed volume.
var successEventTypes = []string{"CALLBACK_SUCCESS", "REDEMPTION_V2_SUCCESS"}

// BuildDaily returns the query for a single day.
//
// Merchant identifiers are embedded as quoted literals joined by
// commas. No escaping is performed beyond the literal quoting; callers
// must pass identifiers that are already sanitized. An empty mid list
// yields a well-formed query that matches nothing, which is not an
// error at this layer.
//
// hour, when non-nil, must be in [0,23] and adds an hour-of-day
// predicate on top of the day filter.
func BuildDaily(mids []string, day time.Time, hour *int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT %s, sum(%s) FROM %s", MerchantColumn, amountColumn, Table)
	fmt.Fprintf(&b, " WHERE %s IN (%s)", MerchantColumn, quoteList(mids))
	fmt.Fprintf(&b, " AND date.dayOfMonth = %d AND date.monthOfYear = %d AND date.year = %d",
		day.Day(), int(day.Month()), day.Year())
	if hour != nil {
		fmt.Fprintf(&b, " AND date.hourOfDay = %d", *hour)
	}
	fmt.Fprintf(&b, " AND eventType IN('%s')", strings.Join(successEventTypes, "','"))
	fmt.Fprintf(&b, " GROUP BY %s", MerchantColumn)

	return b.String()
}

// BuildRange returns one query per day in [start, end], in ascending
// day order. Time-of-day components of start and end are ignored. The
// optional hour predicate applies to every day in the range.
func BuildRange(mids []string, start, end time.Time, hour *int) []string {
	s := truncateToDate(start)
	e := truncateToDate(end)

	var queries []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		queries = append(queries, BuildDaily(mids, d, hour))
	}
	return queries
}

func quoteList(mids []string) string {
	quoted := make([]string, len(mids))
	for i, m := range mids {
		quoted[i] = "'" + m + "'"
	}
	return strings.Join(quoted, ", ")
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
