package reply

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		action Action
		raw    string
		want   string
	}{
		{ActionTransfer, "insufficient funds for gas", "Insufficient balance."},
		{ActionTransfer, "sender balance too low", "Insufficient balance."},
		{ActionSwap, "swap reverted: slippage exceeded", "Price moved too much. Try again."},
		{ActionRedemption, "voucher already redeemed by 0xabc", "Voucher already used."},
		{ActionRedemption, "code not found", "Invalid voucher code."},
		{ActionRedemption, "invalid code format", "Invalid voucher code."},
		{ActionTransfer, "execution reverted 0xdeadbeef", "Transfer failed. Try later."},
		{ActionSwap, "", "Swap failed. Try later."},
	}

	for _, tc := range cases {
		if got := Classify(tc.action, tc.raw); got != tc.want {
			t.Fatalf("Classify(%s, %q) = %q, want %q", tc.action, tc.raw, got, tc.want)
		}
	}
}

func TestClassifyVoucherRulesScopedToRedemption(t *testing.T) {
	// "invalid address" from the send path must not surface a voucher reply.
	if got := Classify(ActionTransfer, "invalid recipient address"); got != "Transfer failed. Try later." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if got := Classify(ActionRedemption, "AlreadyRedeemed()"); got != "Voucher already used." {
		t.Fatalf("unexpected reply: %q", got)
	}
}
