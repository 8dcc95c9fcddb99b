package services

import (
	"testing"

	"awning-admin-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemIDs(items []models.LineItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ItemID
	}
	return ids
}

func TestSetMainProduct(t *testing.T) {
	t.Run("description is templated from name and dimensions in metres", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		b.SetMainProduct("Sunshade 3000", 400, 350, 1200, 0, 20)

		require.Len(t, b.Items(), 1)
		item := b.Items()[0]
		assert.Equal(t, MainProductItemID, item.ItemID)
		assert.Equal(t, "Sunshade 3000 closed cassette awning\n4m wide x 3.5m projection", item.Description)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, 1200.0, item.UnitPrice)
	})

	t.Run("not written until both dimensions are known", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		b.SetMainProduct("Sunshade 3000", 400, 0, 1200, 0, 20)
		assert.Empty(t, b.Items())
	})

	t.Run("dimension change regenerates in place", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		b.SetMainProduct("Sunshade 3000", 400, 350, 1200, 0, 20)
		require.NoError(t, b.SetAddon(models.AddonMotor, true, "Somfy motor", 1, 250, 0, 20))

		b.SetMainProduct("Sunshade 3000", 500, 350, 1400, 0, 20)

		require.Len(t, b.Items(), 2)
		assert.Contains(t, b.Items()[0].Description, "5m wide")
		assert.Equal(t, 1400.0, b.Items()[0].UnitPrice)
	})

	t.Run("prepended before addons picked first", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		require.NoError(t, b.SetAddon(models.AddonMotor, true, "Somfy motor", 1, 250, 0, 20))
		b.SetMainProduct("Sunshade 3000", 400, 350, 1200, 0, 20)

		assert.Equal(t, []string{MainProductItemID, "addon-motor"}, itemIDs(b.Items()))
	})
}

func TestSetAddonOrdering(t *testing.T) {
	t.Run("selection order does not matter", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		b.SetMainProduct("Sunshade 3000", 400, 350, 1200, 0, 20)
		require.NoError(t, b.SetAddon(models.AddonElectrician, true, "Electrician call-out", 1, 150, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonBracket, true, "Heavy-duty brackets", 2, 40, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonHeater, true, "Infrared heater", 1, 300, 0, 20))

		assert.Equal(t, []string{
			MainProductItemID,
			"addon-bracket",
			"addon-heater",
			"addon-electrician",
		}, itemIDs(b.Items()))
	})

	t.Run("ordering holds without a main product", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		require.NoError(t, b.SetAddon(models.AddonHeater, true, "Infrared heater", 1, 300, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonArm, true, "Folding arm", 2, 80, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonBracket, true, "Heavy-duty brackets", 2, 40, 0, 20))

		assert.Equal(t, []string{"addon-bracket", "addon-arm", "addon-heater"}, itemIDs(b.Items()))
	})

	t.Run("reselecting replaces in place", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		require.NoError(t, b.SetAddon(models.AddonBracket, true, "Standard brackets", 2, 30, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonMotor, true, "Somfy motor", 1, 250, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonBracket, true, "Heavy-duty brackets", 4, 40, 0, 20))

		require.Len(t, b.Items(), 2)
		assert.Equal(t, "Heavy-duty brackets", b.Items()[0].Description)
		assert.Equal(t, 4, b.Items()[0].Quantity)
	})

	t.Run("deselecting removes exactly that item", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		require.NoError(t, b.SetAddon(models.AddonBracket, true, "Heavy-duty brackets", 2, 40, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonMotor, true, "Somfy motor", 1, 250, 0, 20))
		require.NoError(t, b.SetAddon(models.AddonBracket, false, "", 0, 0, 0, 0))

		assert.Equal(t, []string{"addon-motor"}, itemIDs(b.Items()))
	})

	t.Run("installation is invoice-only", func(t *testing.T) {
		quote := NewLineItemBuilder(models.DocumentQuote)
		err := quote.SetAddon(models.AddonInstallation, true, "Installation", 1, 500, 0, 20)
		assert.Error(t, err)

		invoice := NewLineItemBuilder(models.DocumentInvoice)
		require.NoError(t, invoice.SetAddon(models.AddonElectrician, true, "Electrician call-out", 1, 150, 0, 20))
		require.NoError(t, invoice.SetAddon(models.AddonInstallation, true, "Installation", 1, 500, 0, 20))
		assert.Equal(t, []string{"addon-electrician", "addon-installation"}, itemIDs(invoice.Items()))
	})

	t.Run("unknown addon type is rejected", func(t *testing.T) {
		b := NewLineItemBuilder(models.DocumentQuote)
		assert.Error(t, b.SetAddon("gutter", true, "Gutter kit", 1, 60, 0, 20))
	})
}

func TestComputeTotals(t *testing.T) {
	items := []models.LineItem{
		{Quantity: 1, UnitPrice: 1000, DiscountPercentage: 10, TaxRate: 20},
		{Quantity: 2, UnitPrice: 50, DiscountPercentage: 0, TaxRate: 20},
	}

	totals := ComputeTotals(items)

	assert.InDelta(t, 1100.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 100.0, totals.TotalDiscount, 0.001)
	// tax applies to the post-discount amounts: 900*20% + 100*20%
	assert.InDelta(t, 200.0, totals.TotalTax, 0.001)
	assert.InDelta(t, 1200.0, totals.GrandTotal, 0.001)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil)
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.GrandTotal)
}

func TestValidateItems(t *testing.T) {
	valid := []models.LineItem{{ItemID: MainProductItemID, Description: "awning", Quantity: 1, UnitPrice: 100}}

	t.Run("passes with a resolved context and one item", func(t *testing.T) {
		assert.NoError(t, ValidateItems(100, 10, valid))
	})

	t.Run("requires a workflow and customer", func(t *testing.T) {
		assert.Error(t, ValidateItems(0, 10, valid))
		assert.Error(t, ValidateItems(100, 0, valid))
	})

	t.Run("requires at least one item", func(t *testing.T) {
		assert.Error(t, ValidateItems(100, 10, nil))
	})

	t.Run("rejects malformed items", func(t *testing.T) {
		assert.Error(t, ValidateItems(100, 10, []models.LineItem{{ItemID: "x", Quantity: 1, UnitPrice: 100}}))
		assert.Error(t, ValidateItems(100, 10, []models.LineItem{{ItemID: "x", Description: "d", Quantity: 0, UnitPrice: 100}}))
		assert.Error(t, ValidateItems(100, 10, []models.LineItem{{ItemID: "x", Description: "d", Quantity: 1, UnitPrice: -1}}))
	})
}
