package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretRoundTrip(t *testing.T) {
	require.NoError(t, InitSecretKey("test-key"))

	sealed, err := EncryptSecret("secret_abc123")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "secret_abc123")

	plain, err := DecryptSecret(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret_abc123", plain)
}

func TestDecryptRejectsTamperedSecret(t *testing.T) {
	require.NoError(t, InitSecretKey("test-key"))

	sealed, err := EncryptSecret("secret_abc123")
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = DecryptSecret(sealed)
	assert.Error(t, err)
}

func TestInitSecretKeyRejectsEmptyKey(t *testing.T) {
	assert.Error(t, InitSecretKey(""))
}

func TestIntegrationBearerToken(t *testing.T) {
	require.NoError(t, InitSecretKey("test-key"))

	integration := Integration{Name: "gridiron", WorkspaceID: "ws-1"}
	require.NoError(t, integration.SetBearerToken("secret_token"))

	token, err := integration.BearerToken()
	require.NoError(t, err)
	assert.Equal(t, "secret_token", token)
}

func TestIntegrationSyncSettings(t *testing.T) {
	integration := Integration{}

	// empty settings parse to the zero value
	settings, err := integration.SyncSettings()
	require.NoError(t, err)
	assert.Empty(t, settings.DefaultDatabaseID)
	assert.Empty(t, settings.TargetTables)

	require.NoError(t, integration.SetSyncSettings(SyncSettings{
		DefaultDatabaseID: "db1",
		TargetTables:      []string{"players", "transfer_portal"},
	}))

	settings, err = integration.SyncSettings()
	require.NoError(t, err)
	assert.Equal(t, "db1", settings.DefaultDatabaseID)
	assert.Equal(t, []string{"players", "transfer_portal"}, settings.TargetTables)
}

func TestIntegrationSyncSettingsRejectsMalformedJSON(t *testing.T) {
	integration := Integration{Settings: []byte("{not json")}
	_, err := integration.SyncSettings()
	assert.Error(t, err)
}
