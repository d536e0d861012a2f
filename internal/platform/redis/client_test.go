// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pals/internal/platform/redis"
)

/*
TestNewClient verifies the connection is validated at startup.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := redis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", logger)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, redis.Ping(context.Background(), client))

	server.Close()
	assert.Error(t, redis.Ping(context.Background(), client))
}

/*
TestNewClient_InvalidURL rejects malformed URLs.
*/
func TestNewClient_InvalidURL(t *testing.T) {
	_, err := redis.NewClient(context.Background(), "://nope", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
