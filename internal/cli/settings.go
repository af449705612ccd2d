package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix         = "GDATALINT_"
	defaultConfigFile = "gdatalint.yaml"
	defaultEnvFile    = ".env"
)

// settings is the resolved configuration shared by all commands.
type settings struct {
	Root            string `yaml:"root"`
	Profile         string `yaml:"profile"`
	ProtocolVersion string `yaml:"protocol_version"`
	Indent          string `yaml:"indent"`
	MaxDepth        int    `yaml:"max_depth"`
	Verbose         bool   `yaml:"verbose"`
}

func defaultSettings() settings {
	return settings{Root: "feed", Indent: "  "}
}

// environment looks variables up in the process first and in the .env
// file second, so exported values win over the file.
type environment struct {
	file map[string]string
}

func (e environment) lookup(name string) (string, bool) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		return v, true
	}
	v, ok := e.file[envPrefix+name]
	return v, ok
}

// loadSettings layers the YAML config file, the environment and the
// command line flags, in increasing precedence.
func loadSettings(cmd *cobra.Command) (settings, error) {
	s := defaultSettings()
	flags := cmd.Flags()

	envPath, _ := flags.GetString("env-file")
	env, err := readEnvFile(envPath, flags.Changed("env-file"))
	if err != nil {
		return s, err
	}

	configPath, _ := flags.GetString("config")
	explicit := flags.Changed("config")
	if !explicit {
		if v, ok := env.lookup("CONFIG"); ok && v != "" {
			configPath, explicit = v, true
		}
	}
	if configPath == "" {
		configPath = defaultConfigFile
	}
	if err := readConfigFile(configPath, explicit, &s); err != nil {
		return s, err
	}

	if err := applyEnv(env, &s); err != nil {
		return s, err
	}
	return s, applyFlags(cmd, &s)
}

func readEnvFile(path string, explicit bool) (environment, error) {
	if path == "" {
		return environment{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return environment{}, nil
		}
		return environment{}, fmt.Errorf("read env file %s: %w", path, err)
	}
	return environment{file: values}, nil
}

func readConfigFile(path string, explicit bool, s *settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return usagef("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return usagef("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(env environment, s *settings) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"ROOT", &s.Root},
		{"PROFILE", &s.Profile},
		{"PROTOCOL_VERSION", &s.ProtocolVersion},
		{"INDENT", &s.Indent},
	}
	for _, v := range strs {
		if value, ok := env.lookup(v.name); ok {
			*v.dst = value
		}
	}
	if value, ok := env.lookup("MAX_DEPTH"); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return usagef("%sMAX_DEPTH: %w", envPrefix, err)
		}
		s.MaxDepth = n
	}
	if value, ok := env.lookup("VERBOSE"); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return usagef("%sVERBOSE: %w", envPrefix, err)
		}
		s.Verbose = b
	}
	return nil
}

func applyFlags(cmd *cobra.Command, s *settings) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("root") {
		s.Root, err = flags.GetString("root")
	}
	if err == nil && flags.Changed("profile") {
		s.Profile, err = flags.GetString("profile")
	}
	if err == nil && flags.Changed("protocol-version") {
		s.ProtocolVersion, err = flags.GetString("protocol-version")
	}
	if err == nil && flags.Changed("max-depth") {
		s.MaxDepth, err = flags.GetInt("max-depth")
	}
	if err == nil && flags.Changed("verbose") {
		s.Verbose, err = flags.GetBool("verbose")
	}
	if err == nil && flags.Lookup("indent") != nil && flags.Changed("indent") {
		s.Indent, err = flags.GetString("indent")
	}
	if err != nil {
		return &usageError{err: err}
	}
	return nil
}
