package codelearn

import "context"

// CredentialProvider supplies the bearer token attached to each request. It
// is consulted synchronously before every dispatch; an empty token means the
// request goes out unauthenticated. Providers never refresh tokens.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialProvider.
type CredentialFunc func(ctx context.Context) (string, error)

// Token implements CredentialProvider.
func (f CredentialFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a fixed token, mostly useful in tests and scripts.
type StaticToken string

// Token implements CredentialProvider.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// NoCredentials never authenticates.
var NoCredentials CredentialProvider = StaticToken("")
