// Package triage attaches typed diagnostic payloads to in-flight failures and
// routes each failure to the first handler whose declared requirements the
// attached payloads satisfy.
//
// Deeply nested call sites declare payloads with OnError without threading
// them through intermediate signatures; the payloads are committed to the
// failure's episode only if the enclosing scope actually exits via failure.
// Dispatch then selects among an ordered handler list using the failure's
// category (its error chain) and the committed payload types and values.
package triage
