/*
Package config manages configuration parsing and validation for exportsrc.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |   HCL   | |   JSON    |
	| Parser    | | Parser  | | Parser    |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Describes which archives, descriptors and source files the pipeline deals with
- Decides how colliding outputs are handled (overwrite, fail, rename)
- Controls how many independent archives may run at once

🔄 Flow:
1. An explicit --config file, or the first .exportsrc.{hcl,yaml,yml,json} found
2. Format-specific parsing through the parser registry
3. Defaults and normalization in Validate
4. CLI flags override the validated values

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, "", ".")
	if err != nil {
		return err
	}
	cfg.OnCollision = config.CollisionRename
	if err := cfg.Validate(); err != nil {
		return err
	}

HCL files may refer to the built-in defaults:

	source_ext   = defaults.source_ext
	on_collision = "rename"
	ignore_globs = ["meta/*.json"]
*/
package config
