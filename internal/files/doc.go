// Package files locates the biometric export files the loader reads.
//
// Sources are either listed explicitly or discovered by globbing a
// directory. Discovered files are returned sorted by name so that the
// merged dataset keeps a stable record order between runs.
//
// Example usage:
//
//	d := files.NewDiscovery(".")
//	paths, err := d.ResolveSources(cfg.Sources)
package files
