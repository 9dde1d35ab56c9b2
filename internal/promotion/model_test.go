package promotion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponInput_ExpiresOn(t *testing.T) {
	cases := []struct {
		name string
		body string
		want *Date
	}{
		{"Date only", `{"code":"NATAL","expires_on":"2026-12-31"}`, &Date{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)}},
		{"Timestamp keeps its own day", `{"code":"NATAL","expires_on":"2026-12-31T23:00:00-03:00"}`, &Date{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)}},
		{"Absent", `{"code":"NATAL"}`, nil},
		{"Null", `{"code":"NATAL","expires_on":null}`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in CouponInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))
			if tc.want == nil {
				assert.Nil(t, in.ExpiresOn)
				return
			}
			require.NotNil(t, in.ExpiresOn)
			assert.True(t, tc.want.Equal(in.ExpiresOn.Time))
		})
	}

	t.Run("Rejects other formats", func(t *testing.T) {
		var in CouponInput
		assert.Error(t, json.Unmarshal([]byte(`{"expires_on":"31/12/2026"}`), &in))
		assert.Error(t, json.Unmarshal([]byte(`{"expires_on":20261231}`), &in))
	})

	t.Run("Encodes as a day", func(t *testing.T) {
		out, err := json.Marshal(CouponInput{Code: "NATAL", ExpiresOn: &Date{time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)}})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"expires_on":"2026-12-31"`)
	})
}
