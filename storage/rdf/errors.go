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

package rdf

import (
	"fmt"

	"github.com/cayleygraph/rdfstore/format"
)

// UnsupportedFormatError is returned when a format outside of the registry is
// requested.
type UnsupportedFormatError struct {
	Format format.Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("given format %q is not supported", string(e.Format))
}

// ConversionError is returned when a stored resource could not be translated
// to the requested format.
type ConversionError struct {
	Path   string
	Format format.Format
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert file %q to format %q: %v", e.Path, string(e.Format), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
