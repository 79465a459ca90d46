// Package natsclient announces staged changes over NATS.
//
// The Client wraps a NATS connection with a circuit breaker around
// connection attempts, exponential backoff and reconnect handling. After
// the configured number of consecutive failures (default 5) the circuit
// opens and Connect fails fast until the backoff elapses.
//
// # Basic Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("dristage"),
//	    natsclient.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(context.Background())
//
// # Change Notifications
//
// ChangePublisher implements staging.ChangeNotifier. Every applied diff is
// published as a JSON ChangeReport on "<prefix>.<kind>.updated":
//
//	publisher := natsclient.NewChangePublisher(client,
//	    natsclient.WithSubjectPrefix("dristage"))
//	runner := staging.NewRunner(store, resolver, staging.WithNotifier(publisher))
//
// To retain changes for consumers that start later, publish through a
// JetStream stream instead of the core connection:
//
//	stream, err := natsclient.NewStreamPublisher(ctx, client, "DRISTAGE", "dristage.>")
//	publisher := natsclient.NewChangePublisher(stream)
//
// Notification failures never fail a record; the staging driver logs them.
package natsclient
