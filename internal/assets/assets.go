package assets

import _ "embed"

// DefaultTemplatesYAML is the dataset served when no external template source is configured.
//
//go:embed templates.yaml
var DefaultTemplatesYAML []byte
