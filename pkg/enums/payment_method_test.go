package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	t.Parallel()

	for _, want := range []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodMomo,
		PaymentMethodVNPay,
		PaymentMethodZaloPay,
	} {
		got, err := ParsePaymentMethod(string(want))
		if err != nil {
			t.Fatalf("parse %q: %v", want, err)
		}
		if got != want {
			t.Fatalf("parsed %q, want %q", got, want)
		}
		if !got.IsValid() {
			t.Fatalf("%q must be valid", got)
		}
	}

	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
}
