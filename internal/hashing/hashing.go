// Package hashing computes the content digests used by the ledger.
//
// All digests are single SHA-256 rendered as lowercase hex. Changing the
// algorithm changes every stored hash, so it is tied to SchemeVersion.
package hashing

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SchemeVersion identifies the digest scheme. Bump the major version on
// any change to ItemHash or BlockHash.
const SchemeVersion = "1.0.0"

// digest returns the hex SHA-256 of s
func digest(s string) string {
	return hex.EncodeToString(chainhash.HashB([]byte(s)))
}

// ItemHash returns the iHash of a news item: the digest of title, link,
// source and published concatenated with no separator. Callers pass
// already trimmed values; empty fields contribute nothing.
func ItemHash(title, link, source, published string) string {
	var sb strings.Builder
	sb.Grow(len(title) + len(link) + len(source) + len(published))
	sb.WriteString(title)
	sb.WriteString(link)
	sb.WriteString(source)
	sb.WriteString(published)
	return digest(sb.String())
}

// BlockHash returns the digest of the lexicographically sorted item hashes
// concatenated together. The input order does not matter and the input
// slice is not modified.
func BlockHash(iHashes []string) string {
	sorted := make([]string, len(iHashes))
	copy(sorted, iHashes)
	sort.Strings(sorted)
	return digest(strings.Join(sorted, ""))
}
