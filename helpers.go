// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"slices"
)

// AreModalitiesCompatible reports whether a client accepting accepted can
// consume output of the supported content types. An empty list on either
// side accepts everything.
func AreModalitiesCompatible(accepted, supported []string) bool {
	if len(accepted) == 0 || len(supported) == 0 {
		return true
	}
	for _, mode := range accepted {
		if slices.Contains(supported, mode) {
			return true
		}
	}
	return false
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
