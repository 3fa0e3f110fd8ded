package fantasiad

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSE(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSSE(&buf, []byte(`[{"id":"a"}]`)))
	require.NoError(t, WriteSSE(&buf, []byte(`[]`)))

	event, err := ReadSSE(&buf)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(event))

	event, err = ReadSSE(&buf)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(event))

	_, err = ReadSSE(&buf)
	assert.ErrorIs(t, err, io.EOF)
}
