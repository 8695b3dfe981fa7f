package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "general-physician", Slug("General Physician"))
	assert.Equal(t, "cardiology", Slug("  Cardiology "))
	assert.Equal(t, "ear-nose-throat", Slug("Ear, Nose & Throat"))
}

func TestSpecialtyTitle(t *testing.T) {
	assert.Equal(t, "General Physician & Internal Medicine", SpecialtyTitle(DefaultListingSlug))
	assert.Equal(t, "Cardiology", SpecialtyTitle("cardiology"))
	assert.Equal(t, "Sleep Medicine", SpecialtyTitle("sleep-medicine"))
	assert.Equal(t, "Émile Ñeuro", SpecialtyTitle("émile-ñeuro"))
}

func TestEnumerations(t *testing.T) {
	assert.True(t, IsSpecialty("Neurology"))
	assert.False(t, IsSpecialty("neurology"))
	assert.True(t, IsCity("Pune"))
	assert.False(t, IsCity("Paris"))
}

func TestDecodeDoctors(t *testing.T) {
	t.Run("bare array with mongo ids", func(t *testing.T) {
		docs, err := DecodeDoctors([]byte(`[{"_id":"abc","name":"Dr. A","rating":4.5},{"id":"x2","name":"Dr. B"}]`))
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "abc", docs[0].ID)
		assert.Equal(t, 4.5, docs[0].Rating)
		assert.Equal(t, "x2", docs[1].ID)
	})

	t.Run("wrapped under doctors", func(t *testing.T) {
		docs, err := DecodeDoctors([]byte(`{"doctors":[{"name":"Dr. C","city":"Pune"}],"total":1}`))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Pune", docs[0].City)
	})

	t.Run("wrapped under data", func(t *testing.T) {
		docs, err := DecodeDoctors([]byte(`{"data":[]}`))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("error payload", func(t *testing.T) {
		_, err := DecodeDoctors([]byte(`{"error":"Failed to fetch doctors"}`))
		assert.ErrorIs(t, err, ErrUnrecognizedPayload)
	})
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "a1", ExtractID([]byte(`{"_id":"a1"}`)))
	assert.Equal(t, "b2", ExtractID([]byte(`{"message":"ok","doctor":{"_id":"b2"}}`)))
	assert.Equal(t, "c3", ExtractID([]byte(`{"data":{"id":"c3"}}`)))
	assert.Empty(t, ExtractID([]byte(`[]`)))
}
