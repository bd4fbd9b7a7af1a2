// Package tunas has services for interacting with the grammar compilation
// server backend decoupled from the API that accesses it.
package tunas

import (
	"github.com/dekarrin/gudgeon/registry"
)

// Service is a service for interacting with and modifying the grammar
// compilation server backend. It performs the actions requested and makes
// calls to server persistence to preserve the backend state.
//
// The zero-value of Service is not ready to be used; assign a valid
// registry.Store to DB before attempting to use it.
type Service struct {

	// DB is the persistence store of the service.
	DB registry.Store
}
