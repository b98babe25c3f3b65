package gen

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHeader, cfg.Header)
	assert.Equal(t, DefaultAuthor, cfg.Author)
	assert.Equal(t, DefaultPackage, cfg.Package)
	assert.Equal(t, DefaultModule, cfg.Module)
	assert.Equal(t, time.Now().Format(DateLayout), cfg.Date)
	assert.Positive(t, cfg.Workers)
	assert.NotNil(t, cfg.Log)
	assert.True(t, cfg.Renders(KindView))
}

func TestNewConfig_Options(t *testing.T) {
	log := logrus.New()
	cfg, err := NewConfig(
		WithHeader("// generated"),
		WithAuthor("ruoyi"),
		WithPackage("github.com/acme/admin"),
		WithModule("tool"),
		WithDate(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)),
		WithPrefixes("sys_", "t_"),
		WithWorkers(2),
		WithKinds(KindEntity, KindDAO),
		WithLogger(log),
	)
	require.NoError(t, err)
	assert.Equal(t, "// generated", cfg.Header)
	assert.Equal(t, "ruoyi", cfg.Author)
	assert.Equal(t, "github.com/acme/admin", cfg.Package)
	assert.Equal(t, "tool", cfg.Module)
	assert.Equal(t, "2023-12-31", cfg.Date)
	assert.Equal(t, []string{"sys_", "t_"}, cfg.Prefixes)
	assert.Equal(t, 2, cfg.Workers)
	assert.Same(t, log, cfg.Log)
	assert.True(t, cfg.Renders(KindDAO))
	assert.False(t, cfg.Renders(KindView))
	assert.Equal(t, "config", cfg.Namer().Strip("t_sys_config"))
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty header", WithHeader("")},
		{"empty package", WithPackage("")},
		{"empty module", WithModule("")},
		{"zero date", WithDate(time.Time{})},
		{"bad date", WithDateString("01/02/2024")},
		{"zero workers", WithWorkers(0)},
		{"unknown kind", WithKinds("router")},
		{"nil logger", WithLogger(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opt)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_ApplyAll(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyAll(WithWorkers(0), WithModule(""), WithAuthor("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
	assert.Contains(t, err.Error(), "Module")
	assert.Equal(t, "a", cfg.Author)
}

func TestMustNewConfig(t *testing.T) {
	assert.NotPanics(t, func() { MustNewConfig(WithDateString("2024-02-29")) })
	assert.Panics(t, func() { MustNewConfig(WithWorkers(-1)) })
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
	}
	assert.True(t, Kind("custom:router").Valid())
	assert.False(t, Kind("custom:").Valid())
	assert.False(t, Kind("router").Valid())
}
