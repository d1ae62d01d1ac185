package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSpecies(t *testing.T) {
	assert.True(t, ValidSpecies(SpeciesDog))
	assert.True(t, ValidSpecies(SpeciesCat))
	assert.True(t, ValidSpecies(SpeciesOther))
	assert.False(t, ValidSpecies("hamster"))
	assert.False(t, ValidSpecies(""))
}

func TestValidGender(t *testing.T) {
	assert.True(t, ValidGender(GenderMale))
	assert.True(t, ValidGender(GenderFemale))
	assert.False(t, ValidGender("unknown"))
	assert.False(t, ValidGender(""))
}

func TestValidIntent(t *testing.T) {
	assert.True(t, ValidIntent(IntentBreeding))
	assert.True(t, ValidIntent(IntentPlaydates))
	assert.True(t, ValidIntent(IntentOpen))
	assert.False(t, ValidIntent("casual"))
	assert.False(t, ValidIntent(""))
}

func TestMaxSearchRadiusKm(t *testing.T) {
	max := MaxSearchRadiusKm()
	for _, r := range SearchRadiusKm {
		assert.LessOrEqual(t, r, max)
	}
	assert.Equal(t, 25.0, max)
}
