// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// PolicyIDFor derives the stable id of a policy from its title and source
// path. The title is compared by normalize.TitleKey, so width and
// book-title-mark variants of the same title map to the same id.
func PolicyIDFor(title, sourcePath string) types.PolicyID {
	h := xxhash.New()
	_, _ = h.WriteString(normalize.TitleKey(title))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sourcePath)
	return types.PolicyID(fmt.Sprintf("%016x", h.Sum64()))
}
