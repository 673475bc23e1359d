// Package dnssync keeps the forward and reverse DNS records of the VM
// inventory up to date.
//
// Each VM with a guest-reported host name and IPv4 address yields an A
// record in the forward zone and a PTR record in the reverse zone. Records
// are never patched in place: every existing record under a desired name is
// removed and the desired one added, in one batch per zone. Names whose
// records already hold the desired data are left alone unless
// ReplaceUnchanged is set.
package dnssync
