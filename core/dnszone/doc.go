// Package dnszone provides the managed DNS zones capability.
//
// Records are a closed sum type: ForwardRecord (name to IPv4 address) and
// ReverseRecord (in-addr.arpa name to host name). Record type strings only
// exist inside the backends.
//
// # Backends
//
//   - RFC2136: any authoritative server accepting dynamic updates. Zones are
//     resolved with an SOA query, listed with AXFR and changed with one
//     UPDATE message per Apply, optionally TSIG signed.
//   - Cloudflare: hosted zones through the Cloudflare API. Apply issues one
//     request per record and is not atomic.
//
// Zone lookups match the domain exactly; anything else is ErrZoneNotFound.
package dnszone
