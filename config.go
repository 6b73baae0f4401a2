package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/bvisness/camp/inspect"
	"github.com/naoina/toml"
	"github.com/pkg/errors"
)

// Keys in the config file use the Go field names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type Config struct {
	Format  string `toml:",omitempty"`
	Prompt  string `toml:",omitempty"`
	History string `toml:",omitempty"`
	Verbose bool   `toml:",omitempty"`
}

func defaultConfig() Config {
	return Config{
		Format:  string(inspect.FormatText),
		Prompt:  "camp> ",
		History: ".camp_history",
	}
}

func loadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// historyPath resolves a relative history file against the home directory.
func (c Config) historyPath() string {
	if c.History == "" || filepath.IsAbs(c.History) {
		return c.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.History
	}
	return filepath.Join(home, c.History)
}

func (c Config) format() (inspect.Format, error) {
	return inspect.ParseFormat(c.Format)
}

func dumpConfig(cfg Config) ([]byte, error) {
	return tomlSettings.Marshal(&cfg)
}
