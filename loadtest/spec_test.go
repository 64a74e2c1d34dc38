package loadtest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/caload/loadtest"
	"github.com/effective-security/x/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecBuilderDefaults(t *testing.T) {
	b := loadtest.NewSpecBuilder("LoadTest", nil)

	id := guid.MustCreate()
	spec, err := b.Build(id)
	require.NoError(t, err)

	assert.Equal(t, id, spec.ID)
	assert.Equal(t, "LoadTestCert-"+id, spec.CommonName)
	assert.Equal(t, 2048, spec.KeySize)
	assert.Equal(t, enroll.SHA256, spec.HashAlgorithm)
	assert.Equal(t, enroll.KeyUsageDigitalSignature, spec.KeyUsage)
	assert.Equal(t, "LoadTest", spec.TemplateName)
}

func TestSpecBuilderEmptyTemplate(t *testing.T) {
	b := loadtest.NewSpecBuilder("", nil)

	_, err := b.Build(guid.MustCreate())
	require.Error(t, err)
	assert.Equal(t, "template name is required", err.Error())
}

func TestSpecBuilderProfileOverrides(t *testing.T) {
	profile := &loadtest.Profile{
		Name: enroll.X509Name{
			Organization: "ekspand",
			Country:      "US",
		},
		KeySize:       4096,
		HashAlgorithm: enroll.SHA384,
	}
	b := loadtest.NewSpecBuilder("LoadTest", profile)

	spec, err := b.Build(guid.MustCreate())
	require.NoError(t, err)

	assert.Equal(t, "ekspand", spec.Name.Organization)
	assert.Equal(t, "US", spec.Name.Country)
	assert.Equal(t, 4096, spec.KeySize)
	assert.Equal(t, enroll.SHA384, spec.HashAlgorithm)
	// untouched defaults
	assert.Equal(t, enroll.KeyUsageDigitalSignature, spec.KeyUsage)
}

func TestSpecBuilderUniqueIDs(t *testing.T) {
	b := loadtest.NewSpecBuilder("LoadTest", nil)

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		spec, err := b.Build(guid.MustCreate())
		require.NoError(t, err)
		require.False(t, seen[spec.ID], "id collision: %s", spec.ID)
		seen[spec.ID] = true
	}
}

func TestLoadProfile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "profile.yaml")
	err := os.WriteFile(file, []byte(`
name:
  o: ekspand
  ou: load
key_size: 3072
hash: sha512
`), 0644)
	require.NoError(t, err)

	profile, err := loadtest.LoadProfile(file)
	require.NoError(t, err)
	assert.Equal(t, "ekspand", profile.Name.Organization)
	assert.Equal(t, "load", profile.Name.OrganizationalUnit)
	assert.Equal(t, 3072, profile.KeySize)
	assert.Equal(t, enroll.SHA512, profile.HashAlgorithm)

	_, err = loadtest.LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
