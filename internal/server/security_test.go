package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainListener_Listen(t *testing.T) {
	t.Parallel()

	l, err := NewPlainListener().Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	assert.NotEmpty(t, l.Addr().String())
}

func TestTLSListener_Listen_MissingCertificate(t *testing.T) {
	t.Parallel()

	_, err := NewTLSListener("missing-cert.pem", "missing-key.pem").Listen("tcp", "127.0.0.1:0")
	assert.Error(t, err)
}
