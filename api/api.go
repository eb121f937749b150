// Package api embeds the OpenAPI document served at /openapi.yaml and
// used for request validation.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte
