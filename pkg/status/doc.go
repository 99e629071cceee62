/*
Package status tracks what happened to every file of an archive run.

	            +-------------+
	            |   Report    |
	            | (per zip)   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|  Events   |           | Formatter |
	| (FileInfo)|           |  (lines)  |
	+-----------+           +-----------+

🎯 Purpose:
- Records emitted, skipped, merged, conflicting and failed files
- Keeps per-descriptor and per-source errors without aborting the run
- Formats file events and the one-line archive summary

🔄 Flow:
1. The pipeline creates one Report per archive
2. Every stage calls Track for each file it settles
3. The runner reads Summary and Problems once the archive is finalized

🔍 Example:

	report := status.NewReport("demo.zip")
	report.Track(ctx, status.FileInfo{Path: "BATCH/BATCH-1.groovy", Status: status.StatusEmitted})
	fmt.Println(status.NewDefaultFileFormatter().FormatSummary(report.Archive, "demo", report.Summary()))
*/
package status
