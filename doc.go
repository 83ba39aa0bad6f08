// Package scribe receives document-platform webhooks and routes each event
// to the processors whose rules match it.
//
// Scribe is a library first. Import it to get signature verification, a
// closed set of decoded event types, an immutable processor registry and a
// dispatcher that runs matched processors concurrently while isolating their
// failures. The api package serves it over HTTP and cmd/scribe runs it as a
// standalone server.
//
// Quick start:
//
//	s, err := scribe.New(
//	    scribe.WithWebhookSecret(secret),
//	    scribe.WithProcessors(processor.Processor{
//	        ID:      "welcome",
//	        Enabled: predicate.Const(true),
//	        When:    predicate.OfType(event.PageCreated),
//	        Executor: func(ctx context.Context, evt *event.Envelope) (bool, error) {
//	            return true, nil
//	        },
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	receipt, err := s.Receive(ctx, body, r.Header.Get(signature.Header))
package scribe
