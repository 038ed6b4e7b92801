package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/commonerrors/errortest"
)

func TestSmithConfigurationValidation(t *testing.T) {
	require.NoError(t, DefaultSmithConfiguration().Validate())

	invalid := &SmithConfiguration{MaxConcurrentRuns: -1}
	require.Error(t, invalid.Validate())
	invalid = &SmithConfiguration{FoundryPoolSize: -4}
	require.Error(t, invalid.Validate())
}

func TestRetryPolicyConfigurations(t *testing.T) {
	require.NoError(t, DefaultNoRetryPolicyConfiguration().Validate())
	require.NoError(t, DefaultBasicRetryPolicyConfiguration().Validate())
	require.NoError(t, DefaultExponentialBackoffRetryPolicyConfiguration().Validate())
	require.NoError(t, DefaultLinearBackoffRetryPolicyConfiguration().Validate())

	invalid := &RetryPolicyConfiguration{LinearBackOffEnabled: true}
	require.Error(t, invalid.Validate())
	invalid = &RetryPolicyConfiguration{Enabled: true, RetryMax: 0}
	require.Error(t, invalid.Validate())
}

func TestLoadDefaults(t *testing.T) {
	var cfg SmithConfiguration
	require.NoError(t, Load("FORGETEST", &cfg, DefaultSmithConfiguration()))
	assert.Equal(t, DefaultSmithConfiguration().FoundryPoolSize, cfg.FoundryPoolSize)
	assert.Zero(t, cfg.MaxConcurrentRuns)
	assert.False(t, cfg.StrictCompensation)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FORGETEST_MAX_CONCURRENT_RUNS", "12")
	t.Setenv("FORGETEST_STRICT_COMPENSATION", "true")

	var cfg SmithConfiguration
	require.NoError(t, Load("FORGETEST", &cfg, DefaultSmithConfiguration()))
	assert.Equal(t, 12, cfg.MaxConcurrentRuns)
	assert.True(t, cfg.StrictCompensation)
}

func TestLoadRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv("FORGETEST_MAX_CONCURRENT_RUNS", "-2")

	var cfg SmithConfiguration
	errortest.AssertError(t, Load("FORGETEST", &cfg, DefaultSmithConfiguration()), commonerrors.ErrInvalid)
}

func TestLoadRejectsMissingArguments(t *testing.T) {
	errortest.AssertError(t, Load("FORGETEST", nil, nil), commonerrors.ErrUndefined)
	errortest.AssertError(t, LoadFromViper(nil, "FORGETEST", &SmithConfiguration{}, nil), commonerrors.ErrUndefined)
}

func TestBindFlagToEnv(t *testing.T) {
	session := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-runs", 3, "maximum concurrent runs")
	require.NoError(t, flags.Parse([]string{"--max-runs=7"}))

	require.NoError(t, BindFlagToEnv(session, "FORGETEST", "FORGETEST_MAX_RUNS", flags.Lookup("max-runs")))
	assert.Equal(t, 7, session.GetInt("max.runs"))

	errortest.AssertError(t, BindFlagToEnv(session, "FORGETEST", "FORGETEST_MAX_RUNS", nil), commonerrors.ErrUndefined)
}

func TestRetryWaitBounds(t *testing.T) {
	cfg := &RetryPolicyConfiguration{
		Enabled:      true,
		RetryMax:     2,
		RetryWaitMin: -time.Second,
	}
	require.Error(t, cfg.Validate())
}
