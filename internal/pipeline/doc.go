// Package pipeline fetches registry data for a filter and flattens it into the
// six worksheets of an export.
//
// The run has four stages:
//
//  1. index search, one bulk request; failure or an empty result aborts
//  2. detail lookups, one request per organization; a failed lookup moves the
//     organization to the unavailable list and the run continues
//  3. quality ratings, one bulk request; failure aborts
//  4. flattening and export through a Sink
//
// Detail lookups run on a bounded errgroup pool (one worker by default). Output
// order never depends on completion order: details and unavailable
// organizations always follow the index order.
//
// Flatten is pure. Missing or falsy organization fields and rating scores
// become Placeholder; line item and operation values keep a literal 0 or ""
// and only a missing or null one becomes Placeholder. Repeated task and work
// cells are grouped with Chunk; an incomplete trailing group is reported as a
// DataIssue instead of failing the run.
//
// Example usage:
//
//	orch := pipeline.NewOrchestrator(client,
//		pipeline.WithWorkers(4),
//		pipeline.WithLinkBase(cfg.Registry.InfoCardURL))
//	result, err := orch.Run(ctx, filter.Registry(), workbook)
package pipeline
