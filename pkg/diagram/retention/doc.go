// Package retention prunes stored diagrams.
//
// Pruning runs in two phases: diagrams not updated within retention.days
// are removed first, then the least recently updated diagrams beyond
// retention.max_records. The Scheduler runs the Pruner on a standard
// five-field cron expression such as "0 3 * * *".
package retention
