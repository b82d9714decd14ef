package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	// Given: the version set at build time (or the dev default)

	// When/Then: it is "dev" or a semver string
	if Version == "dev" {
		return
	}
	semver := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semver.MatchString(Version), "got %s", Version)
}

func TestString_ContainsBuildInfo(t *testing.T) {
	str := String()

	assert.Contains(t, str, "wordex "+Version)
	assert.Contains(t, str, "commit: "+Commit)
	assert.Contains(t, str, "go: "+GoVersion)
}

func TestShort(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_JSON(t *testing.T) {
	// Given: the build info
	info := GetInfo()

	// When: marshalling to JSON
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// Then: the platform fields use snake_case keys
	var parsed map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, runtime.GOOS, parsed["os"])
	assert.Equal(t, runtime.GOARCH, parsed["arch"])
	assert.Equal(t, GoVersion, parsed["go_version"])
}
