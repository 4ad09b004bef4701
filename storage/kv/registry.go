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

package kv

import (
	"strings"

	hkv "github.com/hidal-go/hidalgo/kv"
	// register every database hidalgo supports
	_ "github.com/hidal-go/hidalgo/kv/all"

	"github.com/cayleygraph/rdfstore/storage"
)

func init() {
	list := hkv.List()
	native := make(map[string]bool, len(list))
	for _, r := range list {
		native[r.Name] = true
	}
	for _, r := range list {
		r := r
		name := r.Name
		// names are nicer without the "flat." prefix
		if short := strings.TrimPrefix(name, "flat."); short != name && !native[short] {
			name = short
		}
		storage.Register(name, storage.Registration{
			Open: func(addr string, _ storage.Options) (storage.Backend, error) {
				db, err := r.OpenPath(addr)
				if err != nil {
					return nil, err
				}
				return New(db), nil
			},
			Persistent: !r.Volatile,
		})
	}
}
