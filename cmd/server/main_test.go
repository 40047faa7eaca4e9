package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roupadegala/servicecontrol/internal/repository/memory"
	"github.com/roupadegala/servicecontrol/internal/service"
)

func TestBootstrapAdmin_KeyNeverLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	actors := service.NewActorService(memory.NewRepositories(), logger)

	var out bytes.Buffer
	require.NoError(t, bootstrapAdmin(context.Background(), actors, &out, logger))

	line := strings.TrimSpace(out.String())
	require.True(t, strings.HasPrefix(line, "in-memory admin api key: "))
	key := strings.TrimPrefix(line, "in-memory admin api key: ")
	require.NotEmpty(t, key)

	actor, err := actors.Authenticate(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "admin", actor.Name)

	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, key)
		for field, v := range entry.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, key, field)
			}
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("Created in-memory admin actor").Len())
}
