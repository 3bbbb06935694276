package integrity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// StepDelimiter joins ordered processing step names into the single
// string hashed as the processingSteps field. Step dates and
// descriptions are excluded from the seal on purpose: amending a step
// description must not break previously issued digests.
const StepDelimiter = ","

// CanonicalJSON serializes a flat record as a compact JSON object with
// keys in ascending lexicographic order. The output is byte-stable for
// a given set of key/value pairs regardless of map iteration or the
// order the record was built in, which makes it a safe digest input.
func CanonicalJSON(record map[string]interface{}) []byte {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeValue(buf, k)
		buf.WriteByte(':')
		writeValue(buf, record[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// Digest computes the SHA-256 digest of the canonical serialization and
// renders it as a 64-character lowercase hexadecimal string. This exact
// textual form is what gets stored in the hash column; any change to it
// would invalidate every previously sealed record.
func Digest(record map[string]interface{}) string {
	sum := sha256.Sum256(CanonicalJSON(record))
	return hex.EncodeToString(sum[:])
}

// Matches recomputes the digest for the record and compares it to a
// previously stored one.
func Matches(record map[string]interface{}, storedDigest string) bool {
	return Digest(record) == storedDigest
}

// writeValue appends the JSON encoding of a primitive value. HTML
// escaping is disabled so that &, < and > in field values serialize the
// same way other canonical-JSON producers render them.
func writeValue(buf *bytes.Buffer, v interface{}) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Record values are strings and numbers built internally from known
	// flat fields; encoding them cannot fail.
	_ = enc.Encode(v)
	// Encode terminates values with a newline that has no place in the
	// canonical form.
	buf.Truncate(buf.Len() - 1)
}
