package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("full payment intent event", func(t *testing.T) {
		payload := []byte(`{
			"id": "evt_123",
			"type": "payment_intent.succeeded",
			"data": {
				"object": {
					"id": "pi_456",
					"amount": 1999,
					"currency": "eur",
					"metadata": {
						"product": "module-license",
						"module_id": "42",
						"suffix": "abcd"
					}
				}
			}
		}`)

		event, err := ParseEvent(payload)
		require.NoError(t, err)
		assert.Equal(t, "evt_123", event.ID)
		assert.Equal(t, EventPaymentIntentSucceeded, event.Type)
		assert.Equal(t, "module-license", event.Data.Object.Metadata.Product)
		assert.Equal(t, "42", event.Data.Object.Metadata.ModuleID)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("missing id or type", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"data":{}}`))
		assert.Error(t, err)
	})
}

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr bool
	}{
		{
			name:    "module license complete",
			meta:    Metadata{Product: ProductModuleLicense, ModuleID: "42", Suffix: "abcd"},
			wantErr: false,
		},
		{
			name:    "module license missing module id",
			meta:    Metadata{Product: ProductModuleLicense, Suffix: "abcd"},
			wantErr: true,
		},
		{
			name:    "module license non-numeric id",
			meta:    Metadata{Product: ProductModuleLicense, ModuleID: "fortytwo", Suffix: "abcd"},
			wantErr: true,
		},
		{
			name:    "collection type complete",
			meta:    Metadata{Product: ProductCollectionType, Suffix: "col1", CollectionID: "3", WorkspaceID: "7"},
			wantErr: false,
		},
		{
			name:    "collection type missing workspace",
			meta:    Metadata{Product: ProductCollectionType, Suffix: "col1", CollectionID: "3"},
			wantErr: true,
		},
		{
			name:    "collection upgrade complete",
			meta:    Metadata{Product: ProductCollectionUpgrade, CollectionID: "3", ID: "5"},
			wantErr: false,
		},
		{
			name:    "unknown product",
			meta:    Metadata{Product: "module-sticker"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetadataIDParsing(t *testing.T) {
	meta := Metadata{ModuleID: "42", CollectionID: "3", WorkspaceID: "7", ID: "5"}

	moduleID, err := meta.ModuleIDInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), moduleID)

	collectionID, err := meta.CollectionIDInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), collectionID)

	workspaceID, err := meta.WorkspaceIDInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), workspaceID)

	tierID, err := meta.TierIDInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(5), tierID)
}
