// Package domain models French COVID-19 open data and the aggregations built
// on top of it.
//
// # Data Sources
//
// Four files are published daily:
//
//	key figures          opencovid19-fr chiffres-cles.csv          comma separated
//	department tests     Santé publique France SI-DEP, per dep      semicolon separated
//	national incidence   Santé publique France SI-DEP, France       semicolon separated
//	department incidence Santé publique France SI-DEP, rolling week semicolon separated
//
// # Key Figures Conventions
//
// One row per (publisher, area, day). The granularite column gives the level:
// "pays", "region", "departement", plus "monde" and "collectivite-outremer"
// which are kept as [GranularityOther]. Several publishers may report the same
// area and day; [MergeSameDay] collapses them.
//
// Dates are "YYYY-MM-DD". Some historical rows use "YYYY_MM_DD"; underscores
// are rewritten before parsing. Anything still malformed becomes the zero day
// and is ignored by every dated aggregation.
//
// Empty metric cells are missing, not zero. The one exception is the
// department-only view, where a missing nouvelles_hospitalisations becomes 0.
//
// # SI-DEP Conventions
//
// Columns dep, jour, P (positive), T (tested), cl_age90 (age bracket) and
// optionally pop. cl_age90 holds the lower bound of each ten-year bracket
// ("9", "19", ... "89", "90"); "0" is the all-ages total and must not be summed
// together with the brackets.
//
// Department codes are INSEE codes: "01".."95", "2A"/"2B" for Corsica and
// three digits overseas. Single-digit codes are left-padded.
//
// # Incidence
//
// Incidence rate = P × 100000 / pop over a rolling seven-day window labelled
// "YYYY-MM-DD-YYYY-MM-DD". When a file has no jour column the row is dated by
// the last day of its window. The rate is undefined when pop is missing or not
// positive. Alert levels: below 10 low, 10 to 50 vigilance, 50 and above alert.
package domain
