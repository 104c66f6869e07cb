// Package importer implements the CSV issue import command.
//
// It parses CSV rows into issue requests, previews or performs the matching
// GitHub CLI actions sequentially, and reports per-row outcomes plus a final
// tally. Rows are independent; a failing row never aborts the remainder.
package importer
