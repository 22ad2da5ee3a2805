// Package v1 holds the message layouts specific to protocol version 1:
// Login, GetHashResponse, Publish, GetNodePropertiesResponse and
// CreateModifyNode, plus the node hash serializer. v1 carries no 64-bit
// integer data types and digests node records with SHA-1.
package v1
