// Package files provides file system discovery and management
// utilities shared by the capture and harvest binaries.
//
// Discovery finds spool payloads and report files, either by suffix or
// by glob pattern, returning stable FileInfo slices the harvester can
// feed straight into its pipeline.
//
// Manager wraps the file operations the spool flow needs (existence
// checks, directory creation, writes) behind the path layout, so relative
// paths like "reports/ads_daily_metrics.csv" resolve against the
// executable-rooted directory tree instead of the working directory.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.ExecutableDir)
//	spooled, err := discovery.FindJSONFiles(paths.SpoolDir)
//
//	manager := files.NewManager(paths)
//	if manager.FileExists("reports/ads_daily_metrics.csv") {
//	    // report already generated
//	}
package files
