package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifact_SealAndVerify(t *testing.T) {
	a := &Artifact{
		Info:       ArtifactInfo{ID: "art-1"},
		Model:      []byte(`{"kind":"naive_bayes"}`),
		Vocabulary: []byte(`{"terms":["good"]}`),
	}
	a.Seal()

	assert.Len(t, a.Info.ModelChecksum, 64)
	assert.NoError(t, a.Verify())

	a.Model[0] = '['
	err := a.Verify()
	assert.True(t, errors.Is(err, ErrArtifactCorrupt))
}

func TestArtifact_VerifyEmpty(t *testing.T) {
	a := &Artifact{Info: ArtifactInfo{ID: "art-2"}}
	assert.True(t, errors.Is(a.Verify(), ErrArtifactCorrupt))
}

func TestArtifactInfo_MajorityClass(t *testing.T) {
	assert.Equal(t, SentimentPositive, ArtifactInfo{ClassPriors: [2]float64{0.4, 0.6}}.MajorityClass())
	assert.Equal(t, SentimentNegative, ArtifactInfo{ClassPriors: [2]float64{0.6, 0.4}}.MajorityClass())
	assert.Equal(t, SentimentNegative, ArtifactInfo{ClassPriors: [2]float64{0.5, 0.5}}.MajorityClass())
}

func TestChecksum_Deterministic(t *testing.T) {
	assert.Equal(t, Checksum([]byte("abc")), Checksum([]byte("abc")))
	assert.NotEqual(t, Checksum([]byte("abc")), Checksum([]byte("abd")))
}
