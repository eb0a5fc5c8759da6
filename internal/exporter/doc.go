// Package exporter writes analytics results to CSV and XLSX.
//
// Aggregates and dashboard tables are first laid out as gota DataFrames
// (one column per dimension, one per metric) and then written either as
// UTF-8 CSV with a BOM, so spreadsheet tools detect the encoding, or as an
// excelize workbook with one sheet per table.
//
// Example usage:
//
//	result := dataprocessing.Aggregate(records, []dataprocessing.Dimension{dataprocessing.DimensionState})
//	err := exporter.WriteFrameCSV(w, exporter.AggregateFrame(result), true)
//
//	ex := exporter.NewDashboardExporter(exporter.NewCSVWriter("exports"), logger)
//	files, err := ex.Export(dashboard, exporter.FormatXLSX)
package exporter
