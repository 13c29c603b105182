// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its enablement and route
// registration logic.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of features. It handles registration via Register()
// and loading of enabled features via LoadAll(). The 'lists' and 'export' features are
// developed and tested in isolation and only meet here.
package loader
