// Package utils provides small helpers shared by the sync features, mostly
// around turning object keys into catalog item names.
package utils
