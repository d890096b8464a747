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

// Package literal determines the types of C# literals.
package literal

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/jesse99/Continuum-sub001/cs/token"
)

// NumInfo contains information about a parsed numeric literal.
type NumInfo struct {
	Base    int    // 2, 10 or 16
	IsFloat bool   // has a fraction, an exponent or a real suffix
	Suffix  string // type suffix in lower case, such as "ul" or "m"
	UseSep  bool   // digit separators were used

	digits string // digits without prefix, separators or suffix
}

// ParseNum parses the numeric literal s.
func ParseNum(s string) (NumInfo, error) {
	n := NumInfo{Base: 10}
	orig := s
	if s == "" {
		return n, fmt.Errorf("invalid number %q", orig)
	}
	if strings.ContainsRune(s, '_') {
		n.UseSep = true
		s = strings.ReplaceAll(s, "_", "")
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		n.Base = 16
		s = s[2:]
	case strings.HasPrefix(lower, "0b"):
		n.Base = 2
		s = s[2:]
	}

	// Integer suffixes in any order and case: u, l, ul, lu.
	lower = strings.ToLower(s)
	for _, suf := range []string{"ul", "lu", "u", "l"} {
		if strings.HasSuffix(lower, suf) {
			n.Suffix = suf
			if suf == "lu" {
				n.Suffix = "ul"
			}
			s = s[:len(s)-len(suf)]
			break
		}
	}
	if n.Suffix == "" && n.Base == 10 && lower != "" {
		switch c := lower[len(lower)-1:]; c {
		case "f", "d", "m":
			n.Suffix = c
			n.IsFloat = true
			s = s[:len(s)-1]
		}
	}
	if n.Base == 10 && strings.ContainsAny(s, ".eE") {
		n.IsFloat = true
	}
	if s == "" {
		return n, fmt.Errorf("invalid number %q", orig)
	}
	for _, r := range strings.ToLower(s) {
		ok := false
		switch n.Base {
		case 2:
			ok = r == '0' || r == '1'
		case 16:
			ok = '0' <= r && r <= '9' || 'a' <= r && r <= 'f'
		default:
			ok = '0' <= r && r <= '9' || r == '.' || r == 'e' || r == '+' || r == '-'
		}
		if !ok {
			return n, fmt.Errorf("invalid number %q", orig)
		}
	}
	n.digits = s
	return n, nil
}

// Decimal sets d to the value of n.
func (n *NumInfo) Decimal(d *apd.Decimal) error {
	if n.Base == 10 {
		_, _, err := d.SetString(n.digits)
		return err
	}
	var b apd.BigInt
	if _, ok := b.SetString(n.digits, n.Base); !ok {
		return fmt.Errorf("invalid number %q", n.digits)
	}
	d.Coeff.Set(&b)
	d.Exponent = 0
	d.Negative = false
	d.Form = apd.Finite
	return nil
}

var (
	maxInt32  = apd.New(math.MaxInt32, 0)
	maxUint32 = apd.New(math.MaxUint32, 0)
	maxInt64  = apd.New(math.MaxInt64, 0)
	maxUint64 *apd.Decimal
)

func init() {
	var err error
	maxUint64, _, err = apd.NewFromString("18446744073709551615")
	if err != nil {
		panic(err)
	}
}

// TypeName returns the fully qualified name of the type of n, following
// the rules for integer literals: the first of int, uint, long and ulong
// that can represent the value, restricted by any suffix.
func (n *NumInfo) TypeName() (string, error) {
	if n.IsFloat {
		switch n.Suffix {
		case "f":
			return "System.Single", nil
		case "m":
			return "System.Decimal", nil
		}
		return "System.Double", nil
	}
	var d apd.Decimal
	if err := n.Decimal(&d); err != nil {
		return "", err
	}
	fits := func(max *apd.Decimal) bool { return d.Cmp(max) <= 0 }
	switch n.Suffix {
	case "":
		switch {
		case fits(maxInt32):
			return "System.Int32", nil
		case fits(maxUint32):
			return "System.UInt32", nil
		case fits(maxInt64):
			return "System.Int64", nil
		}
	case "u":
		switch {
		case fits(maxUint32):
			return "System.UInt32", nil
		}
	case "l":
		switch {
		case fits(maxInt64):
			return "System.Int64", nil
		}
	}
	if fits(maxUint64) {
		return "System.UInt64", nil
	}
	return "", fmt.Errorf("integral constant is too large")
}

// TypeOf returns the fully qualified type name of a literal token. It
// reports false for tokens that are not literals, such as null, whose
// type depends on the context.
func TypeOf(t token.Token) (string, bool) {
	switch t.Kind {
	case token.String:
		return "System.String", true
	case token.Char:
		return "System.Char", true
	case token.Number:
		n, err := ParseNum(t.Text)
		if err != nil {
			return "", false
		}
		name, err := n.TypeName()
		if err != nil {
			return "", false
		}
		return name, true
	case token.Identifier:
		if t.Text == "true" || t.Text == "false" {
			return "System.Boolean", true
		}
	}
	return "", false
}
