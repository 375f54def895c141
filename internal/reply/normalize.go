// Package reply renders user-facing SMS text. Downstream collaborators fail
// with unstable free-text errors; Classify maps them onto a small fixed
// vocabulary so raw backend text never reaches a phone.
package reply

import "strings"

// Action names the operation being classified and drives the generic
// fallback reply.
type Action string

const (
	ActionTransfer   Action = "Transfer"
	ActionSwap       Action = "Swap"
	ActionRedemption Action = "Redemption"
	ActionCashout    Action = "Cashout"
	ActionPurchase   Action = "Purchase"
	ActionBridge     Action = "Bridge"
)

// rule maps downstream error text onto one reply. Rules are evaluated in
// order and the first match wins. A rule with actions set only applies to
// those actions.
type rule struct {
	substrings []string
	actions    []Action
	reply      string
}

var rules = []rule{
	{substrings: []string{"already redeemed", "alreadyredeemed"}, reply: "Voucher already used."},
	{substrings: []string{"not found", "invalid"}, actions: []Action{ActionRedemption}, reply: "Invalid voucher code."},
	{substrings: []string{"insufficient", "balance"}, reply: "Insufficient balance."},
	{substrings: []string{"slippage"}, reply: "Price moved too much. Try again."},
}

// Classify turns a raw downstream error into a safe reply for the action.
func Classify(action Action, raw string) string {
	text := strings.ToLower(raw)
	for _, r := range rules {
		if len(r.actions) > 0 && !appliesTo(r.actions, action) {
			continue
		}
		for _, sub := range r.substrings {
			if strings.Contains(text, sub) {
				return r.reply
			}
		}
	}
	return Failed(action)
}

// Failed is the generic downstream-failure reply for an action.
func Failed(action Action) string {
	return string(action) + " failed. Try later."
}

func appliesTo(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// Fixed replies shared across command handlers.
const (
	NoWallet     = "No wallet. Reply JOIN first."
	DBOffline    = "DB offline. Try later."
	TryLater     = "Error. Try later."
	NetworkError = "Network error. Try later."
	BadResponse  = "Error processing response."
)
