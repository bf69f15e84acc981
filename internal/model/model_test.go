package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentMethod(t *testing.T) {
	tests := []struct {
		method     PaymentMethod
		valid      bool
		electronic bool
	}{
		{PaymentMethodMercadoPago, true, true},
		{PaymentMethodCash, true, false},
		{PaymentMethodTransfer, true, false},
		{PaymentMethod("bitcoin"), false, false},
		{PaymentMethod(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.method.IsValid())
			assert.Equal(t, tt.electronic, tt.method.IsElectronic())
		})
	}
}

func TestParseSite(t *testing.T) {
	tests := []struct {
		raw      string
		expected Site
		ok       bool
	}{
		{"almagro", SiteAlmagro, true},
		{"  Ciudad-Jardin ", SiteCiudadJardin, true},
		{"palermo", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			site, ok := ParseSite(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, site)
		})
	}
}

func TestFulfillmentMetadata_IsEmpty(t *testing.T) {
	var nilMeta *FulfillmentMetadata
	assert.True(t, nilMeta.IsEmpty())
	assert.True(t, (&FulfillmentMetadata{}).IsEmpty())
	assert.False(t, (&FulfillmentMetadata{HasGifts: true}).IsEmpty())
	assert.False(t, (&FulfillmentMetadata{PickupLocations: []string{"Av. Corrientes 1234"}}).IsEmpty())
}

func TestOrder_AwaitsPreference(t *testing.T) {
	pref := "pref-1"

	order := &Order{
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusPending,
		PaymentMethod: PaymentMethodMercadoPago,
	}
	assert.True(t, order.AwaitsPreference())

	order.PreferenceID = &pref
	assert.False(t, order.AwaitsPreference())

	cash := &Order{Status: OrderStatusPending, PaymentStatus: PaymentStatusPending, PaymentMethod: PaymentMethodCash}
	assert.False(t, cash.AwaitsPreference())
}
