// Package report renders word frequency statistics for the terminal: a ranked
// table and a horizontal bar chart.
package report
