package validation

import (
	"errors"
	"testing"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	require.NoError(t, Email("alice@example.com"))

	err := Email("not-an-email")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	require.Error(t, Email(""))
}

func TestEmailUnique(t *testing.T) {
	existing := map[string]struct{}{
		"alice@example.com": {},
	}

	require.NoError(t, EmailUnique("bob@example.com", existing))

	err := EmailUnique("alice@example.com", existing)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)

	// lookup is case-insensitive
	require.Error(t, EmailUnique("Alice@Example.com", existing))
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty is valid", raw: "", want: ""},
		{name: "e164", raw: "+1234567890", want: "+1234567890"},
		{name: "dashed", raw: "123-456-7890", want: "1234567890"},
		{name: "parens and spaces", raw: "+1 (555) 123-4567", want: "+15551234567"},
		{name: "dotted", raw: "555.123.4567", want: "5551234567"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "too long", raw: "+1234567890123456", wantErr: true},
		{name: "letters", raw: "call-me-maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Phone(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "phone", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrice(t *testing.T) {
	require.NoError(t, Price(decimal.NewFromFloat(0.01)))
	require.NoError(t, Price(decimal.NewFromFloat(999.99)))

	require.Error(t, Price(decimal.Zero))
	require.Error(t, Price(decimal.NewFromFloat(-1)))
}

func TestStock(t *testing.T) {
	require.NoError(t, Stock(0))
	require.NoError(t, Stock(50))
	require.Error(t, Stock(-1))
}

func TestNonEmpty(t *testing.T) {
	require.NoError(t, NonEmpty("product_ids", "product", 3))

	err := NonEmpty("product_ids", "product", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "At least one product must be selected.")
}
