package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origV, origSHA, origBT := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = origV, origSHA, origBT })

	assert.Equal(t, "subpixel dev (unknown, built unknown)", String())

	Version, GitSHA, BuildTime = "v0.3.0", "4f1c2b9e0d8a", "2025-01-07T10:00:00Z"
	assert.Equal(t, "subpixel v0.3.0 (4f1c2b9, built 2025-01-07T10:00:00Z)", String())
}
