// Package httpclient is the net/http request transport.
//
// [NewClient] builds a pooled client with load-testing friendly transport
// settings; [NewIssuer] wraps it as a runner.Issuer that sends GET or HEAD
// requests with fixed headers and measures the body bytes actually read:
//
//	client := httpclient.NewClient(30*time.Second, workers)
//	issuer := httpclient.NewIssuer(client, headers)
//	outcome := issuer.Issue(ctx, "http://localhost:8080/", http.MethodGet)
//
// Redirects are not followed; a 3xx is recorded like any other status.
package httpclient
