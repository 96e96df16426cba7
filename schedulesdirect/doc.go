/*
Package schedulesdirect is a client for the Schedules Direct JSON listings
service.

Every endpoint method is a thin call into Execute, which attaches the session
token, runs the request through the retrier and decodes the response.
Transport failures and 5xx responses are retried with exponential backoff;
4xx responses and undecodable bodies are returned at once as typed errors
(*HTTPError, *MalformedResponseError, *TransportError).

	client, err := schedulesdirect.NewClient(schedulesdirect.DefaultBaseURL, provider, logger)
	if err != nil {
		return err
	}
	if err := client.Authenticate(ctx); err != nil {
		return err
	}

	status, err := client.Status(ctx)

Calls made before Authenticate succeeds fail with ErrUnauthenticated and never
reach the network. When the service later rejects the token, the client
re-authenticates once and replays the request.
*/
package schedulesdirect
