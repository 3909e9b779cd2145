// Package prompts embeds the default stage templates for use at runtime.
// Templates are embedded so they work regardless of working directory.
package prompts

import "embed"

// FS is the embedded template filesystem, one file per template id
// (e.g. brief_parser.txt). A template may also be written as <id>.yaml.
//
//go:embed *.txt
var FS embed.FS
