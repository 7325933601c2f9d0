// Package redact masks credentials before they reach logs, reports or the
// terminal.
//
// [URL] hides the password of a server URL with user info and the values of
// credential-like query parameters, as used by Kroki instances behind an
// authenticating proxy. [Secrets] applies regex heuristics (API keys, bearer
// tokens, JWTs, private keys, password assignments) to free text such as
// server error excerpts, which may echo diagram source verbatim.
package redact
