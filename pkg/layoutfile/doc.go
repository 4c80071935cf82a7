// Package layoutfile reads and writes layout descriptions and grid
// configuration files.
//
// # Formats
//
// Three encodings are supported, chosen by file extension with
// [FormatFromPath]:
//
//   - .json: encoding/json
//   - .toml: github.com/BurntSushi/toml
//   - .yaml, .yml: gopkg.in/yaml.v3
//
// All three use the same snake_case keys. A layout in TOML:
//
//	resize_style = "stateful"
//
//	[constraints.width]
//	min_px = 120
//	min_pct = 15
//
//	[initial_grid]
//	direction = "h"
//
//	[[initial_grid.children]]
//	component_id = "editor"
//	weight = 70
//
//	[[initial_grid.children]]
//	component_id = "preview"
//
// # Bare Descriptions
//
// A file that has no initial_grid key but describes a grid at its top level
// (a direction or children) is read as the initial grid itself, so the output
// of [WriteDescription] can be loaded directly with [Load].
package layoutfile
