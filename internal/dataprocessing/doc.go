// Package dataprocessing turns raw biometric-authentication exports into the
// aggregated views rendered by the dashboard.
//
// # Architecture
//
// The package is organized as a short pipeline of pure stages:
//
// 1. Source readers: decode CSV or XLSX files into a RawTable
// 2. Normalizer: map a RawTable onto the canonical BiometricRecord schema
// 3. Merger: concatenate normalized sources into one immutable Dataset
// 4. Filters: restrict records by state set and inclusive date range
// 5. Aggregator and Ranker: group-and-sum plus top-N selection
// 6. Bucketer: monthly trend series and its summary statistics
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderConfig{})
//	ds, err := loader.Load(ctx, []string{"part1.csv", "part2.csv"})
//	if err != nil {
//	    return err
//	}
//
//	sel := dataprocessing.Selection{States: []string{"Assam"}}
//	view := sel.Apply(ds.Records())
//	byState := dataprocessing.Aggregate(view, []dataprocessing.Dimension{dataprocessing.DimensionState})
//	top := dataprocessing.Top(byState, dataprocessing.MetricTotal, 3)
//
// # Degradation
//
// Only an unreadable source aborts a load. Unparsable dates become null
// dates, unparsable or negative counts become zero and missing columns
// are treated as empty. Each degradation is counted in NormalizeStats.
//
// # Concurrency
//
// A Dataset is never mutated after Merge returns, so it can be shared by any
// number of readers. Every derived view is a fresh value.
package dataprocessing
