package trip

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_MarshalJSON(t *testing.T) {
	d := NewDate(time.Date(2024, time.July, 14, 13, 45, 0, 0, time.UTC))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-14"`, string(b))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-07-14"`), &d))
	assert.Equal(t, time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC), d.Time)
}

func TestDate_UnmarshalJSON_Null(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestDate_UnmarshalJSON_Invalid(t *testing.T) {
	var d Date
	err := json.Unmarshal([]byte(`"14/07/2024"`), &d)
	assert.Error(t, err)
}
