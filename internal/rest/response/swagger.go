//nolint:unused
package response

// Bad Request
//
// swagger:response BadRequest
type swaggerBadRequest struct {
	// Bad Request
	// in: body
	Body struct {
		// Example: missing required fields: version and platforms
		Error string `json:"error"`
	}
}

// Unauthorized
//
// swagger:response Unauthorized
type swaggerUnauthorized struct {
	// Unauthorized
	// in: body
	Body struct {
		// Example: missing authorization credential
		Error string `json:"error"`
	}
}

// Internal Server Error
//
// swagger:response InternalServerError
type swaggerInternalServerError struct {
	// Internal server Error
	// in: body
	Body struct {
		// Example: file writes are not supported in this environment, configure a key-value store instead
		Error string `json:"error"`
	}
}
