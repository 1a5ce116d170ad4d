package main

import (
	"strings"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

func joinIDs(ids []mod.PackageID) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
