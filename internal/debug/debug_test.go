// Copyright 2026 The Continuum Authors
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

package debug

import (
	"testing"

	"github.com/go-quicktest/qt"
)

type testFlags struct {
	Foo    bool
	BarBaz bool
	Level  int
	Name   string
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want testFlags
		err  string
	}{{
		name: "empty",
	}, {
		name: "commas",
		env:  ",,",
	}, {
		name: "bare bool",
		env:  "foo",
		want: testFlags{Foo: true},
	}, {
		name: "case",
		env:  "BarBaz=1,FOO=false",
		want: testFlags{BarBaz: true},
	}, {
		name: "values",
		env:  "level=3,name=x=y",
		want: testFlags{Level: 3, Name: "x=y"},
	}, {
		name: "unknown",
		env:  "foo,ratchet",
		want: testFlags{Foo: true},
		err:  `unknown flag "ratchet"`,
	}, {
		name: "missing value",
		env:  "level",
		err:  `value needed for int flag "level"`,
	}, {
		name: "several errors",
		env:  "level=x,foo=maybe,name=ok",
		want: testFlags{Name: "ok"},
		err:  "invalid value for level: .*\ninvalid value for foo: .*",
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got testFlags
			err := Parse(&got, test.env)
			if test.err != "" {
				qt.Check(t, qt.ErrorMatches(err, test.err))
			} else {
				qt.Check(t, qt.IsNil(err))
			}
			qt.Check(t, qt.Equals(got, test.want))
		})
	}
}

func TestInvalidIs(t *testing.T) {
	var f testFlags
	err := Parse(&f, "level=x")
	qt.Assert(t, qt.ErrorIs(err, ErrInvalid))
}

func TestInit(t *testing.T) {
	var f Flags
	err := Init(&f, func(key string) string {
		if key == EnvVar {
			return "parsetrace,loglevel=debug"
		}
		return ""
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(f, Flags{ParseTrace: true, LogLevel: "debug"}))

	err = Init(&f, func(string) string { return "verbose" })
	qt.Assert(t, qt.ErrorMatches(err, `cannot parse CSCOMPLETE_DEBUG: unknown flag "verbose"`))
}
