// Package authn issues and verifies user credentials: argon2id password
// hashes at rest and HS256 bearer tokens in flight. The rest of the server
// only ever sees the integer user id the token resolves to.
package authn
