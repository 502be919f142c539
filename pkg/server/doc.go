// Package server exposes client page models over HTTP.
//
// Every client (one host page) is addressed by an ID in the URL and gets its
// own ngutils.Service, created on first use:
//
//	GET    /api/clients/{clientID}/model
//	GET    /api/clients/{clientID}/head
//	GET    /api/clients/{clientID}/page?form=orders
//	PUT    /api/clients/{clientID}/tags
//	POST   /api/clients/{clientID}/viewport
//	POST   /api/clients/{clientID}/cleanup
//	GET    /api/clients/{clientID}/styleclasses/{form}
//	POST   /api/clients/{clientID}/styleclasses/{form}
//	DELETE /api/clients/{clientID}/styleclasses/{form}/{class}
//	DELETE /api/clients/{clientID}
//	GET    /api/clients/{clientID}/watch
//
// The watch endpoint upgrades to a WebSocket. It sends the current model as
// a "snapshot" message, then one message per change:
//
//	{"type":"tags","seq":3,"model":{"contributedTags":[...],"styleclasses":null}}
//
// With a snapshot store configured, closing a client saves its model and
// the next request for the same ID restores it.
//
// Usage:
//
//	srv := server.New(cfg,
//	    server.WithStore(snapshot.NewMemoryStore()),
//	    server.WithMetrics(middleware.NewMetrics(), nil),
//	)
//	err := srv.Run(ctx)
package server
