package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableConfig() Config {
	return Config{
		URI:          "bolt://127.0.0.1:1",
		Username:     "neo4j",
		Password:     "secret",
		QueryTimeout: time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Username: "u", Password: "p"}.Validate())
	assert.Error(t, Config{URI: "bolt://localhost:7687"}.Validate())
	assert.NoError(t, Config{URI: "bolt://localhost:7687", Username: "u", Password: "p"}.Validate())
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

// Connect against a closed port exercises the full retry loop, including the
// branch where driver construction succeeds but connectivity verification
// fails and the driver must be torn down before the next attempt.
func TestConnectUnreachableStore(t *testing.T) {
	client, err := NewClient(unreachableConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	// a failed Connect must leave the client unconnected
	err = client.Ping(context.Background())
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestReadWithoutConnect(t *testing.T) {
	client, err := NewClient(unreachableConfig())
	require.NoError(t, err)

	rows, err := client.Read(context.Background(), "RETURN 1", nil)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestCloseWithoutConnect(t *testing.T) {
	client, err := NewClient(unreachableConfig())
	require.NoError(t, err)
	assert.NoError(t, client.Close(context.Background()))
}

func TestUnavailableWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("read", cause)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "connection refused")
}
