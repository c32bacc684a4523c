// Package provider dispatches similarity searches across source categories.
// Each Provider answers for exactly one core.SourceType; the Dispatcher fans
// a query out to the categories a submission selected, bounds each search
// with a timeout, and merges the candidates. Provider failures degrade the
// result to partial coverage instead of failing the check.
package provider
