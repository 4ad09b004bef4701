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

package clog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	lines []string
	level int
}

func (r *recorder) Infof(format string, args ...interface{}) {
	r.lines = append(r.lines, "I "+fmt.Sprintf(format, args...))
}
func (r *recorder) Warningf(format string, args ...interface{}) {
	r.lines = append(r.lines, "W "+fmt.Sprintf(format, args...))
}
func (r *recorder) Errorf(format string, args ...interface{}) {
	r.lines = append(r.lines, "E "+fmt.Sprintf(format, args...))
}
func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.lines = append(r.lines, "F "+fmt.Sprintf(format, args...))
}

type leveled struct {
	recorder
}

func (l *leveled) V(level int) bool { return l.level >= level }
func (l *leveled) SetV(level int)   { l.level = level }

func TestLogger(t *testing.T) {
	prev := logger
	defer SetLogger(prev)

	r := &recorder{}
	SetLogger(r)
	Infof("a %d", 1)
	Warningf("b")
	Errorf("c %q", "x")
	require.Equal(t, []string{"I a 1", "W b", `E c "x"`}, r.lines)

	SetLogger(nil)
	Infof("dropped")
	require.Len(t, r.lines, 3)
}

func TestVerbosity(t *testing.T) {
	prev := logger
	defer SetLogger(prev)

	SetLogger(&recorder{})
	SetV(2)
	require.True(t, V(2))
	require.False(t, V(3))
	SetV(0)

	l := &leveled{}
	SetLogger(l)
	require.False(t, V(1))
	SetV(1)
	require.Equal(t, 1, l.level)
	require.True(t, V(1))
}
