// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config is the typed view of rdfstore settings held by viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cayleygraph/rdfstore/storage"
)

const (
	KeyBackend = "store.backend"
	KeyPath    = "store.path"
	KeyOptions = "store.options"

	KeyHost     = "http.host"
	KeyBaseURL  = "http.base_url"
	KeyReadOnly = "http.read_only"
	KeyTimeout  = "http.timeout"
)

// EnvPrefix is prepended to environment variables, e.g. RDFSTORE_STORE_BACKEND.
const EnvPrefix = "RDFSTORE"

// Name of the configuration file, without extension.
const Name = "rdfstore"

// Config defines the behavior of an rdfstore instance.
type Config struct {
	Backend string
	Path    string
	Options storage.Options

	Host     string
	BaseURL  string
	ReadOnly bool
	Timeout  time.Duration
}

// SetDefaults registers default values and the environment mapping.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, "memstore")
	v.SetDefault(KeyHost, "127.0.0.1:64280")
	v.SetDefault(KeyTimeout, 30*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads an explicit configuration file, or searches the usual places
// when file is empty. A missing file is not an error in the latter case.
func Load(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}
	v.SetConfigName(Name)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+Name))
	}
	v.AddConfigPath(filepath.Join("/etc", Name))
	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	return err
}

// FromViper builds a Config from the current settings.
func FromViper(v *viper.Viper) Config {
	return Config{
		Backend:  v.GetString(KeyBackend),
		Path:     v.GetString(KeyPath),
		Options:  storage.Options(v.GetStringMap(KeyOptions)),
		Host:     v.GetString(KeyHost),
		BaseURL:  v.GetString(KeyBaseURL),
		ReadOnly: v.GetBool(KeyReadOnly),
		Timeout:  v.GetDuration(KeyTimeout),
	}
}

// OpenBackend opens the configured storage backend.
func (c Config) OpenBackend() (storage.Backend, error) {
	return storage.Open(c.Backend, c.Path, c.Options)
}
