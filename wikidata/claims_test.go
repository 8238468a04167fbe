package wikidata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateStamp(t *testing.T) {
	tests := []struct {
		stamp string
		want  time.Time
		ok    bool
	}{
		{"1990-05-15", time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC), true},
		{"1990-00-00", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		{"1990-07-00", time.Date(1990, time.July, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"1990-13-01", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDateStamp(tt.stamp)
		assert.Equal(t, tt.ok, ok, tt.stamp)
		assert.Equal(t, tt.want, got, tt.stamp)
	}
}

func TestGetClaims(t *testing.T) {
	fake := &fakeWikidata{entities: []fakeEntity{
		{id: "Q7", claims: map[string]interface{}{
			"P569": timeClaim("+1931-03-22T00:00:00Z"),
			"P570": timeClaim("+2024-06-01T00:00:00Z"),
		}},
	}}
	client := newTestClient(t, fake)

	claims, err := client.GetClaims(context.Background(), "Q7")
	require.NoError(t, err)
	assert.False(t, claims.IsLiving())

	death, ok := claims.Date(PropDateOfDeath)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), death)

	_, err = client.GetClaims(context.Background(), "Q404")
	assert.ErrorIs(t, err, ErrUpstream)
}
