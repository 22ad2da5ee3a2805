// Package v2 holds the message layouts specific to protocol version 2.
//
// Compared with v1: Login carries a plain password and publish options,
// Publish has simple and detailed layouts for groups and points, the update
// URL property is gone (its option bit is reserved) and an engineering unit
// property follows the format. v2 carries every data type including 64-bit
// integers, and digests node records with SHA-256.
package v2
