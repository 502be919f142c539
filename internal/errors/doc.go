// Package errors provides coded, structured errors for the outer surfaces
// of ngutils: the HTTP API, the snapshot stores, configuration and the CLI.
//
// The model packages never fail; absence is reported with nil or false.
// Errors only appear where input crosses a boundary.
//
// # Error Codes
//
// Each code maps to a category and a short message:
//   - N001-N009: model records (invalid tag, unknown form, viewport mode)
//   - N010-N019: snapshot storage
//   - N020-N029: HTTP request decoding
//   - N030-N039: configuration
//   - N040-N049: WebSocket watch feed
//   - N050-N059: CLI
//
// # Usage
//
//	return errors.New("N020").
//	    WithDetail("tagName is required when attrName is set").
//	    Wrap(err)
//
// HTTP handlers use HTTPStatus and Body to build the response; the CLI
// prints Format.
package errors
