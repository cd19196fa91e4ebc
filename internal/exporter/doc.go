// Package exporter writes the flattened registry export into an xlsx workbook.
//
// Workbook is the pipeline sink: each sheet becomes a worksheet holding a
// header row and one styled table with filters, in the order the sheets are
// given. When a sheet carries a link base, the agency id in the first column
// links to the organization page on bus.gov.ru.
//
//	sink := exporter.NewWorkbook(path, exporter.WithLogger(logger))
//	err := sink.Write(ctx, result.Sheets(linkBase))
package exporter
