package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Giulio2002/tkv"
)

const (
	// Wrap is the number of characters to wrap the help text at
	Wrap int = 50

	envPrefix = "tkv"
)

// wrapString wraps text at Wrap characters
func wrapString(text string) string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > Wrap {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// newConfig loads .env files and returns a viper instance reading TKV_*
// environment variables.
func newConfig() *viper.Viper {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func setupStoreFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("dir", "./tkv-data", wrapString("Directory of the environment, created if missing"))
	flags.String("name", "", wrapString("Named database to use instead of the unnamed one"))
	flags.String("backend", "auto", wrapString("Storage engine (mdbx, bolt, auto). auto reuses the engine of an existing environment"))
	flags.Uint64("max-map-size", tkv.DefaultMaxMapSize/tkv.MB, wrapString("Upper bound of the data file in MiB"))
	flags.Uint32("max-dbs", tkv.DefaultMaxDBs, wrapString("Number of named databases the environment may hold"))
	flags.Bool("dups", false, wrapString("Keep several sorted values per key"))
	flags.String("log-level", "warn", wrapString("Log level (debug, info, warn, error)"))
}

// newLogger builds a console logger at the configured level.
func newLogger(v *viper.Viper) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", v.GetString("log-level"), err)
	}
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger(), nil
}

// storeOptions translates the configuration into store options.
func storeOptions(v *viper.Viper) ([]tkv.Option, error) {
	backend, err := resolveBackend(v)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(v)
	if err != nil {
		return nil, err
	}
	opts := []tkv.Option{
		tkv.WithBackend(backend),
		tkv.WithMaxMapSize(v.GetUint64("max-map-size") * tkv.MB),
		tkv.WithMaxDBs(v.GetUint32("max-dbs")),
		tkv.WithLogger(logger),
	}
	if name := v.GetString("name"); name != "" {
		opts = append(opts, tkv.WithName(name))
	}
	if v.GetBool("dups") {
		opts = append(opts, tkv.WithDuplicates())
	}
	return opts, nil
}

// resolveBackend picks the configured backend, detecting it from the data
// files for "auto".
func resolveBackend(v *viper.Viper) (tkv.Backend, error) {
	name := v.GetString("backend")
	if name != "auto" {
		backend, ok := tkv.ParseBackend(name)
		if !ok {
			return 0, fmt.Errorf("invalid backend %s", name)
		}
		return backend, nil
	}
	backend, err := tkv.DetectBackend(v.GetString("dir"))
	if tkv.IsNotFound(err) {
		return tkv.DefaultBackend(), nil
	}
	return backend, err
}

type stringStore = tkv.Store[string, string]

// openStore opens the configured string-keyed database.
func openStore(v *viper.Viper) (*stringStore, error) {
	opts, err := storeOptions(v)
	if err != nil {
		return nil, err
	}
	return tkv.Open(v.GetString("dir"), tkv.StringKey[string]{}, tkv.StringValue[string]{}, opts...)
}
