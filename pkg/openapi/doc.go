// Package openapi bridges endpoint type schemas and OpenAPI 3 documents. It
// exports each supported mode as a component schema so instance payloads can
// be validated by standard tooling, and seeds a field list from an existing
// component so authors do not start from an empty table.
package openapi
