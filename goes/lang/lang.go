// Copyright © 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package lang provides text in alternative languages.
//
// The language precedence is the value of the "LANG" environment variable
// followed by the goes default, en_US.UTF-8.
package lang

import "os"

const (
	DeDE = "de_DE.UTF-8"
	EnUS = "en_US.UTF-8"
	EsES = "es_ES.UTF-8"
	FrFR = "fr_FR.UTF-8"
	JaJP = "ja_JP.UTF-8"
	ZhCN = "zh_CN.UTF-8"
)

const Default = EnUS

var Lang string

func init() {
	Lang = os.Getenv("LANG")
	if len(Lang) == 0 {
		Lang = Default
	}
}

// Alt maps a language tag to text.
type Alt map[string]string

func (alt Alt) String() string {
	s, found := alt[Lang]
	if !found {
		s = alt[Default]
	}
	return s
}
