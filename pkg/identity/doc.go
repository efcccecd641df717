// Package identity carries the authenticated actor through request context.
package identity
