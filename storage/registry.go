// Copyright 2026 The Cayley Authors. All rights reserved.
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

package storage

import (
	"fmt"
	"sort"
	"sync"
)

// Options are backend specific settings, usually taken from configuration.
type Options map[string]interface{}

// StringKey returns a string option, or def when it is not set.
func (o Options) StringKey(key, def string) (string, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("invalid %s option type: %T", key, v)
	}
	return s, nil
}

// BoolKey returns a boolean option, or def when it is not set.
func (o Options) BoolKey(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("invalid %s option type: %T", key, v)
	}
	return b, nil
}

// Registration describes how to open a backend.
type Registration struct {
	// Open returns a backend stored at addr. Volatile backends ignore addr.
	Open func(addr string, opts Options) (Backend, error)
	// Persistent is false for backends that lose data on close.
	Persistent bool
}

var (
	regMu    sync.RWMutex
	backends = make(map[string]Registration)
)

// Register makes a backend available by name. It panics on duplicates.
func Register(name string, r Registration) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, ok := backends[name]; ok {
		panic(fmt.Errorf("storage backend %q is already registered", name))
	}
	backends[name] = r
}

// Open opens a registered backend.
func Open(name, addr string, opts Options) (Backend, error) {
	regMu.RLock()
	r, ok := backends[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown storage backend %q", name)
	}
	return r.Open(addr, opts)
}

// IsPersistent reports whether the named backend keeps data across restarts.
func IsPersistent(name string) bool {
	regMu.RLock()
	defer regMu.RUnlock()
	return backends[name].Persistent
}

// Backends lists registered backend names.
func Backends() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
