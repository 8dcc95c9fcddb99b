package validation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func loadIngestSchema(t *testing.T) *gojsonschema.Schema {
	t.Helper()
	path, err := filepath.Abs("../../schemas/inbound_email.json")
	require.NoError(t, err)
	schema, err := LoadSchema(path)
	require.NoError(t, err)
	return schema
}

func TestValidateAndParseIngestRequest(t *testing.T) {
	schema := loadIngestSchema(t)

	t.Run("valid payload", func(t *testing.T) {
		payload := []byte(`{
			"incomingEmailId": "email-42",
			"fromAddress": "jo@example.com",
			"subject": "Quote for a 4m awning",
			"body": "Hi, we'd like a quote please.",
			"category": "quote_creation",
			"priority": "high"
		}`)

		req, err := ValidateAndParseIngestRequest(payload, schema)
		require.NoError(t, err)
		assert.Equal(t, "email-42", req.IncomingEmailID)
		assert.Equal(t, "quote_creation", req.Category)
		assert.Equal(t, "high", req.Priority)
	})

	t.Run("priority is optional", func(t *testing.T) {
		payload := []byte(`{
			"incomingEmailId": "email-43",
			"fromAddress": "jo@example.com",
			"subject": "Invoice overdue",
			"category": "invoice_due"
		}`)

		req, err := ValidateAndParseIngestRequest(payload, schema)
		require.NoError(t, err)
		assert.Empty(t, req.Priority)
	})

	t.Run("missing incomingEmailId gets a generated one", func(t *testing.T) {
		payload := []byte(`{
			"fromAddress": "jo@example.com",
			"subject": "Walk-in enquiry",
			"category": "initial_enquiry"
		}`)

		first, err := ValidateAndParseIngestRequest(payload, schema)
		require.NoError(t, err)
		assert.NotEmpty(t, first.IncomingEmailID)

		second, err := ValidateAndParseIngestRequest(payload, schema)
		require.NoError(t, err)
		assert.NotEqual(t, first.IncomingEmailID, second.IncomingEmailID)
	})

	t.Run("missing required field", func(t *testing.T) {
		payload := []byte(`{
			"incomingEmailId": "email-44",
			"fromAddress": "jo@example.com",
			"category": "junk"
		}`)

		_, err := ValidateAndParseIngestRequest(payload, schema)
		assert.Error(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		payload := []byte(`{
			"incomingEmailId": "email-45",
			"fromAddress": "jo@example.com",
			"subject": "hello",
			"category": "spam"
		}`)

		_, err := ValidateAndParseIngestRequest(payload, schema)
		assert.Error(t, err)
	})

	t.Run("unexpected extra field", func(t *testing.T) {
		payload := []byte(`{
			"incomingEmailId": "email-46",
			"fromAddress": "jo@example.com",
			"subject": "hello",
			"category": "junk",
			"mailbox": "sales"
		}`)

		_, err := ValidateAndParseIngestRequest(payload, schema)
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ValidateAndParseIngestRequest([]byte(`{not json`), schema)
		assert.Error(t, err)
	})
}
