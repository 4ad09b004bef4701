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
	"mime"
	"net/http"
	"path"
	"strings"
)

// DetectMimetype guesses the MIME type of a file from its extension, and
// from its first bytes when the extension is not known. Parameters such as
// charset are dropped.
func DetectMimetype(p string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return stripParams(t)
	}
	if len(data) == 0 {
		return "text/plain"
	}
	return stripParams(http.DetectContentType(data))
}

func stripParams(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
