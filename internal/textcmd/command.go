// Package textcmd parses inbound SMS text into structured commands and
// orchestrates their execution against the wallet collaborators.
package textcmd

// Kind discriminates the closed set of command intents.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindHelp
	KindJoin
	KindBalance
	KindSetPIN
	KindSend
	KindDeposit
	KindHistory
	KindRedeem
	KindSwap
	KindCashout
	KindBuy
	KindBridge
	KindSaveContact
	KindListContacts
	KindSwitchChain
)

// Command is a parsed SMS instruction. Only the fields relevant to Kind are
// populated; a Command is built once per inbound message and never mutated.
type Command struct {
	Kind Kind

	// Join
	Alias string

	// SetPIN
	PIN string

	// Send / Swap / Cashout / Buy / Bridge
	Amount float64
	Token  string

	// Send
	Recipient string

	// Redeem
	Code string

	// Bridge
	FromChain string
	ToChain   string

	// SaveContact
	Name  string
	Phone string

	// SwitchChain
	Chain string

	// Unrecognized: Usage holds a verbatim usage hint when a known keyword
	// had a malformed argument list; Text holds the original (uppercased)
	// input otherwise.
	Usage string
	Text  string
}

func unrecognized(usage string) Command {
	return Command{Kind: KindUnrecognized, Usage: usage}
}
