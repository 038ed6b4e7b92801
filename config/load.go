package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/forgekit/forge/commonerrors"
)

const (
	// EnvVarSeparator separates words in environment variable names.
	EnvVarSeparator = "_"
	// DotEnvFile is the environment file loaded before the environment variables are read.
	DotEnvFile = ".env"

	configKeySeparator = "."
)

// Load loads the configuration from the environment (i.e. .env file,
// environment variables) into configurationToSet. Values not found in the
// environment come from defaultConfiguration. envVarPrefix defines the prefix
// environment variables use, e.g. with prefix "FORGE", the entry
// `max_concurrent_runs` is read from FORGE_MAX_CONCURRENT_RUNS.
func Load(envVarPrefix string, configurationToSet IEngineConfiguration, defaultConfiguration IEngineConfiguration) error {
	return LoadFromViper(viper.New(), envVarPrefix, configurationToSet, defaultConfiguration)
}

// LoadFromViper is the same as Load but reuses the viper session provided
// instead of creating a new one.
func LoadFromViper(viperSession *viper.Viper, envVarPrefix string, configurationToSet IEngineConfiguration, defaultConfiguration IEngineConfiguration) (err error) {
	if viperSession == nil {
		return commonerrors.UndefinedVariable("viper session")
	}
	if configurationToSet == nil {
		return commonerrors.UndefinedVariable("configuration to set")
	}

	var defaults map[string]any
	err = mapstructure.Decode(defaultConfiguration, &defaults)
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrMarshalling, err, "cannot decode default configuration")
	}
	err = viperSession.MergeConfigMap(defaults)
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrUnexpected, err, "cannot merge default configuration")
	}

	// Load .env file contents into the environment, if present.
	_ = godotenv.Load(DotEnvFile)

	setEnvOptions(viperSession, envVarPrefix)
	for _, key := range viperSession.AllKeys() {
		// AutomaticEnv does not see keys only present in the defaults map,
		// so bind them explicitly.
		if err = viperSession.BindEnv(key); err != nil {
			return commonerrors.WrapErrorf(commonerrors.ErrUnexpected, err, "cannot bind key %q to the environment", key)
		}
	}

	err = viperSession.Unmarshal(configurationToSet)
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrInvalid, err, "unable to decode config into struct")
	}
	err = configurationToSet.Validate()
	if err != nil {
		return commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid configuration")
	}
	return nil
}

// BindFlagToEnv binds a pflag to an environment variable so a command line
// flag can override an environment entry. envVar may be given with or without
// the envVarPrefix.
func BindFlagToEnv(viperSession *viper.Viper, envVarPrefix string, envVar string, flag *pflag.Flag) (err error) {
	if viperSession == nil {
		return commonerrors.UndefinedVariable("viper session")
	}
	if flag == nil {
		return commonerrors.UndefinedVariable("flag")
	}
	setEnvOptions(viperSession, envVarPrefix)
	key, cleansedEnvVar := generateEnvVarConfigKeys(envVar, envVarPrefix)

	err = viperSession.BindPFlag(key, flag)
	if err != nil {
		return commonerrors.WrapErrorf(commonerrors.ErrUnexpected, err, "cannot bind flag %q", flag.Name)
	}
	return viperSession.BindEnv(key, cleansedEnvVar)
}

func generateEnvVarConfigKeys(envVar, envVarPrefix string) (key string, cleansedEnvVar string) {
	short := strings.ToLower(envVar)
	prefix := strings.ToLower(envVarPrefix)
	if strings.HasPrefix(short, prefix) {
		short = strings.TrimPrefix(strings.TrimPrefix(short, prefix), EnvVarSeparator)
	}
	key = strings.NewReplacer(EnvVarSeparator, configKeySeparator).Replace(short)
	cleansedEnvVar = strings.ToUpper(envVarPrefix + EnvVarSeparator + strings.NewReplacer(configKeySeparator, EnvVarSeparator).Replace(short))
	return
}

func setEnvOptions(viperSession *viper.Viper, envVarPrefix string) {
	viperSession.SetEnvPrefix(envVarPrefix)
	viperSession.AllowEmptyEnv(false)
	viperSession.AutomaticEnv()
	viperSession.SetEnvKeyReplacer(strings.NewReplacer(configKeySeparator, EnvVarSeparator))
}
