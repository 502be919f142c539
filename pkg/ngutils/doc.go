// Package ngutils is the per-client utility service of the rich client.
//
// A host creates one Service per connected client page. The service owns
// the page model (contributed header tags and per-form style classes),
// serializes calls against it and tells subscribers about every change so
// that a renderer can reconcile the document head.
//
//	svc := ngutils.New(ngutils.WithClientID(id), ngutils.WithLogger(logger))
//	cancel := svc.Subscribe(func(c ngutils.Change) { hub.Broadcast(c) })
//	defer cancel()
//
//	svc.SetViewportMetaDefaultForMobileAwareSites()
//	svc.AddFormStyleClass("orders", "compact")
package ngutils
