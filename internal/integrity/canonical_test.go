package integrity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func sampleRecord() map[string]interface{} {
	return map[string]interface{}{
		"batchCode":       "ATB-2025-001",
		"herbName":        "Ashwagandha",
		"scientificName":  "Withania somnifera",
		"farmerName":      "Rajesh Patel",
		"harvestRegion":   "Mandsaur, Madhya Pradesh",
		"harvestDate":     "2025-09-15",
		"farmerId":        "farmer-123",
		"processingSteps": "Harvesting,Washing & Sorting",
	}
}

func TestDigestShape(t *testing.T) {
	digest := Digest(sampleRecord())
	assert.Regexp(t, hexDigest, digest)
}

func TestDigestDeterminism(t *testing.T) {
	record := sampleRecord()
	assert.Equal(t, Digest(record), Digest(record))
}

func TestDigestInsertionOrderIndependence(t *testing.T) {
	forward := map[string]interface{}{}
	forward["batchCode"] = "ATB-2025-001"
	forward["herbName"] = "Ashwagandha"
	forward["harvestDate"] = "2025-09-15"

	reversed := map[string]interface{}{}
	reversed["harvestDate"] = "2025-09-15"
	reversed["herbName"] = "Ashwagandha"
	reversed["batchCode"] = "ATB-2025-001"

	assert.Equal(t, Digest(forward), Digest(reversed))
}

func TestDigestSensitivity(t *testing.T) {
	base := Digest(sampleRecord())

	shifted := sampleRecord()
	shifted["harvestDate"] = "2025-09-16"
	assert.NotEqual(t, base, Digest(shifted))

	relocated := sampleRecord()
	relocated["harvestRegion"] = "Pune, Maharashtra"
	assert.NotEqual(t, base, Digest(relocated))
}

func TestCanonicalJSONSortsKeysCompactly(t *testing.T) {
	out := CanonicalJSON(map[string]interface{}{
		"b": "two",
		"a": "one",
		"c": 3,
	})
	assert.Equal(t, `{"a":"one","b":"two","c":3}`, string(out))
}

func TestCanonicalJSONDoesNotEscapeHTML(t *testing.T) {
	out := CanonicalJSON(map[string]interface{}{
		"processingSteps": "Washing & Sorting",
	})
	assert.Equal(t, `{"processingSteps":"Washing & Sorting"}`, string(out))
}

func TestMatches(t *testing.T) {
	record := sampleRecord()
	digest := Digest(record)
	require.True(t, Matches(record, digest))

	record["harvestRegion"] = "Pune, Maharashtra"
	assert.False(t, Matches(record, digest))
}
