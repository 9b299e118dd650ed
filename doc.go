// Package codelearn is the client-side data layer of the CodeLearn platform:
//
//   - Client: the shared transport (base URL, JSON headers, timeout, bearer
//     token injection, middleware chain, Prometheus metrics, optional
//     OpenTelemetry instrumentation)
//   - Requester: a generic request primitive that tracks loading, error and
//     data per invocation and reports outcomes through a Notifier
//   - QueryClient, Query and Mutation: a key-addressed cache of server state
//     whose entries are invalidated by successful mutations
//
// Typical usage:
//
//	client := codelearn.New(
//	    codelearn.WithBaseURL("https://api.codelearn.example/api"),
//	    codelearn.WithCredentials(codelearn.StaticToken(token)),
//	)
//	qc := codelearn.NewQueryClient()
//
//	users := codelearn.NewQuery(qc, codelearn.Key("admin", "users"), fetchUsers)
//	users.Mount(ctx)
//	defer users.Unmount()
//
//	toggle := codelearn.NewMutation(qc, codelearn.MutationConfig[int, User]{
//	    Fn:          togglePremium,
//	    Invalidates: []codelearn.QueryKey{codelearn.Key("admin", "users")},
//	})
//	_, err := toggle.Mutate(ctx, 7) // users refetches in the background
//
// The library is silent unless given a zerolog.Logger with WithLogger.
// Transport failures never retry; callers decide what to do with a
// *ClientError.
package codelearn
