package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntoContext(t *testing.T) {
	tests := []struct {
		name     string
		settings *Run
	}{
		{name: "empty_settings", settings: &Run{}},
		{name: "settings_with_values", settings: &Run{NoColor: true, Region: "eu-west-1", Profile: "dev"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.settings)
			got, ok := FromContext(ctx)
			require.True(t, ok)
			assert.Same(t, tt.settings, got)
		})
	}
}

func TestFromContextMissing(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFromContextNilPointer(t *testing.T) {
	ctx := IntoContext(context.Background(), nil)
	_, ok := FromContext(ctx)
	assert.False(t, ok)
}

func TestFromContextOrDefault(t *testing.T) {
	def := FromContextOrDefault(context.Background())
	require.NotNil(t, def)
	assert.True(t, def.Interactive)

	run := &Run{Region: "us-east-1"}
	assert.Same(t, run, FromContextOrDefault(IntoContext(context.Background(), run)))
}
