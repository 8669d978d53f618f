package middleware

import "github.com/aretw0/tendril/pkg/ports"

// Middleware allows wrapping a PersistenceAdapter to add behavior.
type Middleware func(ports.PersistenceAdapter) ports.PersistenceAdapter
