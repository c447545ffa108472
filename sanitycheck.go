// Copyright 2019 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

//go:build race
// +build race

package seb

// sanity check the configuration
func init() {
	if ReadChunkSize < 1 {
		panic("ReadChunkSize < 1")
	}
	if DefaultEventWindow < 1 {
		panic("DefaultEventWindow < 1")
	}
	if DefaultMultipartMemory < 1 {
		panic("DefaultMultipartMemory < 1")
	}
}
