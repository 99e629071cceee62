/*
Package operation turns exported configuration archives into trees of source files.

	+-----------+     +-----------+     +------------+     +----------+
	|  Extract  | --> |  Flatten  | --> |  Organize  | --> | Finalize |
	| (archive) |     | (staging) |     | (classify) |     | (rename/ |
	+-----------+     +-----------+     +------------+     |  merge)  |
	                                                       +----------+

🎯 Purpose:
- Unpacks an archive into a working directory
- Moves every descriptor into a flat staging directory, deletes everything else
- Decodes each descriptor's sources into <category>[/<sub>]/<name><source ext>
- Renames the working directory after the archive, or merges it into an
  existing output directory

🔄 Flow:
1. Runner resolves the input path to a list of archives
2. Pipeline.ProcessArchive runs the stages for each archive
3. Per-file problems (malformed descriptors, bad payloads, collisions) are
   tracked in a status.Report and do not stop the archive
4. Filesystem and archive failures stop the archive, clean up its working
   directory and let the batch continue

⚡ Collisions:
Every place two outputs can land on the same path (staging, several sources in
one descriptor, merging into an existing output) follows the on_collision
policy: overwrite, fail or rename.

🔍 Example:

	p, err := operation.New(operation.Options{Config: cfg})
	if err != nil {
		return err
	}
	result, err := operation.NewRunner(p).Run(ctx, "exports/")
*/
package operation
