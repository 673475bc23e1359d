// Package middleware contains HTTP middleware for the status API.
//
// # Components
//
//   - auth: API key validation protecting every endpoint except the ones a
//     Next predicate skips.
//
// Request ids come from fiber's requestid middleware and are picked up by
// logger.WithRequestID.
package middleware
