package fantasiad

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1.5s"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`100`), &d))
	assert.Equal(t, 100*time.Millisecond, d.Duration)

	p, err := json.Marshal(Duration{250 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, `"250ms"`, string(p))

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}
