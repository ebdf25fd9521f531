package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_UnmarshalJSON(t *testing.T) {
	t.Run("string form is a signed URL", func(t *testing.T) {
		var target Target
		require.NoError(t, json.Unmarshal([]byte(`"https://bucket.s3.amazonaws.com/doc.pdf?X-Amz-Algorithm=AWS4-HMAC-SHA256"`), &target))

		assert.Equal(t, ModeSignedURL, target.Mode)
		assert.Contains(t, target.URL, "doc.pdf")
		assert.Empty(t, target.Bucket)
	})

	t.Run("object form with key", func(t *testing.T) {
		var target Target
		require.NoError(t, json.Unmarshal([]byte(`{"bucket":"docs","key":"in/report.pdf"}`), &target))

		assert.Equal(t, ModeBucketKey, target.Mode)
		assert.Equal(t, "docs", target.Bucket)
		assert.Equal(t, "in/report.pdf", target.Key)
	})

	t.Run("object form with prefix", func(t *testing.T) {
		var target Target
		require.NoError(t, json.Unmarshal([]byte(`{"bucket":"out","prefix":"results/job-1/"}`), &target))

		assert.Equal(t, ModeBucketKey, target.Mode)
		assert.Equal(t, "results/job-1/", target.Key)
	})

	t.Run("key wins over prefix when both present", func(t *testing.T) {
		var target Target
		require.NoError(t, json.Unmarshal([]byte(`{"bucket":"b","key":"k","prefix":"p"}`), &target))

		assert.Equal(t, "k", target.Key)
	})

	t.Run("null stays unset", func(t *testing.T) {
		var target Target
		require.NoError(t, json.Unmarshal([]byte(`null`), &target))

		assert.Equal(t, ModeUnset, target.Mode)
	})

	t.Run("array is rejected", func(t *testing.T) {
		var target Target
		err := json.Unmarshal([]byte(`["not","a","target"]`), &target)
		require.Error(t, err)
	})
}

func TestTargetMode_String(t *testing.T) {
	assert.Equal(t, "signed_url", ModeSignedURL.String())
	assert.Equal(t, "bucket_key", ModeBucketKey.String())
	assert.Equal(t, "unset", ModeUnset.String())
}

func TestTargetConstructors(t *testing.T) {
	signed := SignedURLTarget("https://example.amazonaws.com/x.pdf")
	assert.Equal(t, ModeSignedURL, signed.Mode)

	structured := BucketKeyTarget("docs", "a/b.pdf")
	assert.Equal(t, ModeBucketKey, structured.Mode)
	assert.Equal(t, "docs", structured.Bucket)
	assert.Equal(t, "a/b.pdf", structured.Key)
}
