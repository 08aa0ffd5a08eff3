package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadClientShared(t *testing.T) {
	c := GetDownloadClient()
	require.NotNil(t, c)
	assert.Same(t, c, GetDownloadClient())

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
	assert.NotZero(t, c.Timeout)
}
