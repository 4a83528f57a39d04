package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute_ZoneIDs(t *testing.T) {
	r := Route{Zones: []RouteZone{
		{ZoneID: "z3", Order: 3},
		{ZoneID: "z1", Order: 1},
		{ZoneID: "z2", Order: 2},
	}}

	assert.Equal(t, []string{"z1", "z2", "z3"}, r.ZoneIDs())
	assert.Equal(t, "z3", r.Zones[0].ZoneID, "source order must not change")
	assert.Empty(t, Route{}.ZoneIDs())
}
