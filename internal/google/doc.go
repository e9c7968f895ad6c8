// Package google handles OAuth2 authorization against Google APIs.
//
// It owns the authorization-code flow, the on-disk token cache, and the
// construction of authenticated HTTP clients for the Gmail API.
package google
