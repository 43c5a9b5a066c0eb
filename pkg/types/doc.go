// Package types defines the entity types, request shapes, and standard errors
// shared by the clinic data store, the service layer, and the local API bridge.
//
// Timestamps are persisted as local-time strings in TimestampLayout so that
// date bucketing can compare on string prefixes (YYYY-MM-DD, YYYY-MM).
package types
