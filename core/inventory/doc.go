// Package inventory provides the VM inventory capability.
//
// VSphere reads every virtual machine below the vCenter root folder through
// a container view, fetching only the name, guest info and power state. The
// guest-reported host name and address are passed through untouched; the DNS
// reconciler decides what is usable.
package inventory
