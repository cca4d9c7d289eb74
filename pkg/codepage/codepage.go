//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

// Package codepage converts text fields between Go strings and the code page
// the NDV server runs with.
package codepage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type CodePage struct {
	name     string
	ccsid    int
	encoding encoding.Encoding
}

var (
	IBM037  = &CodePage{"IBM-037", 37, charmap.CodePage037}
	IBM1047 = &CodePage{"IBM-1047", 1047, charmap.CodePage1047}
	IBM1140 = &CodePage{"IBM-1140", 1140, charmap.CodePage1140}
	IBM437  = &CodePage{"IBM-437", 437, charmap.CodePage437}
	IBM850  = &CodePage{"IBM-850", 850, charmap.CodePage850}
	Latin1  = &CodePage{"ISO-8859-1", 819, charmap.ISO8859_1}
	Windows = &CodePage{"WINDOWS-1252", 1252, charmap.Windows1252}
	UTF8    = &CodePage{"UTF-8", 1208, unicode.UTF8}
)

var codePages = []*CodePage{IBM037, IBM1047, IBM1140, IBM437, IBM850, Latin1, Windows, UTF8}

var aliases = map[string]*CodePage{
	"CP037":     IBM037,
	"CP1047":    IBM1047,
	"CP1140":    IBM1140,
	"CP437":     IBM437,
	"CP850":     IBM850,
	"LATIN1":    Latin1,
	"ISO8859-1": Latin1,
	"CP1252":    Windows,
	"UTF8":      UTF8,
}

// Lookup finds a code page by name (IBM-1047, CP1047, ISO-8859-1, ...) or by
// CCSID number ("1047", "037").
func Lookup(name string) (*CodePage, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	for _, cp := range codePages {
		if cp.name == key || cp.name == "IBM-"+key {
			return cp, nil
		}
	}
	if cp, found := aliases[key]; found {
		return cp, nil
	}
	if ccsid, err := strconv.Atoi(key); err == nil {
		if cp := ByCCSID(ccsid); cp != nil {
			return cp, nil
		}
	}
	return nil, fmt.Errorf("unsupported code page %q", name)
}

func ByCCSID(ccsid int) *CodePage {
	for _, cp := range codePages {
		if cp.ccsid == ccsid {
			return cp
		}
	}
	return nil
}

// Names lists the canonical names of all supported code pages.
func Names() []string {
	names := make([]string, 0, len(codePages))
	for _, cp := range codePages {
		names = append(names, cp.name)
	}
	sort.Strings(names)
	return names
}

func (c *CodePage) Name() string {
	return c.name
}

func (c *CodePage) CCSID() int {
	return c.ccsid
}

func (c *CodePage) Encode(s string) ([]byte, error) {
	b, err := c.encoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return b, nil
}

func (c *CodePage) Decode(b []byte) (string, error) {
	s, err := c.encoding.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	return string(s), nil
}

func (c *CodePage) String() string {
	return c.name
}
