package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL_S3(t *testing.T) {
	got := CanonicalURL(StorageTypeS3, "judgments-bucket", "/cases/2024/judgment.pdf")
	assert.Equal(t, "s3://judgments-bucket/cases/2024/judgment.pdf", got)
}

func TestCanonicalURL_Local(t *testing.T) {
	got := CanonicalURL(StorageTypeLocal, "/var/data/", "cases/2024/judgment.pdf")
	assert.Equal(t, "file:///var/data/cases/2024/judgment.pdf", got)
}

func TestToHTTPS_DefaultRegion(t *testing.T) {
	https, err := ToHTTPS("s3://judgments-bucket/cases/2024/judgment.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "https://judgments-bucket.s3.amazonaws.com/cases/2024/judgment.pdf", https)
}

func TestToHTTPS_NonDefaultRegion(t *testing.T) {
	https, err := ToHTTPS("s3://judgments-bucket/cases/2024/judgment.pdf", "ap-south-1")
	require.NoError(t, err)
	assert.Equal(t, "https://judgments-bucket.s3.ap-south-1.amazonaws.com/cases/2024/judgment.pdf", https)
}

func TestToHTTPS_NonS3PassesThrough(t *testing.T) {
	got, err := ToHTTPS("file:///var/data/cases/judgment.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "file:///var/data/cases/judgment.pdf", got)
}

func TestToHTTPS_MalformedURL(t *testing.T) {
	_, err := ToHTTPS("s3://", "")
	assert.Error(t, err)
}

func TestFromHTTPS_RoundTripsWithToHTTPS(t *testing.T) {
	original := "s3://judgments-bucket/cases/2024/judgment final.pdf"

	https, err := ToHTTPS(original, "")
	require.NoError(t, err)

	back, err := FromHTTPS(https)
	require.NoError(t, err)

	assert.Equal(t, original, back)
}

func TestFromHTTPS_RegionQualifiedHost(t *testing.T) {
	back, err := FromHTTPS("https://judgments-bucket.s3.ap-south-1.amazonaws.com/cases/judgment.pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://judgments-bucket/cases/judgment.pdf", back)
}

func TestFromHTTPS_RejectsNonS3Host(t *testing.T) {
	_, err := FromHTTPS("https://example.com/cases/judgment.pdf")
	assert.Error(t, err)
}
