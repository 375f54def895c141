package textcmd

import (
	"strconv"
	"strings"
)

// Each command family registers its keywords and sub-parser here; adding a
// command is a single new entry. Sub-parsers receive two views of the
// tokenized message: keys is uppercased for keyword matching, vals preserves
// the original casing for literal arguments (recipients, aliases, phones).
type family struct {
	keywords []string
	parse    func(keys, vals []string) Command
}

var families = []family{
	{[]string{"HELP", "?", "COMMANDS"}, func(_, _ []string) Command { return Command{Kind: KindHelp} }},
	{[]string{"JOIN", "START", "REGISTER"}, parseJoin},
	{[]string{"BALANCE", "BAL"}, func(_, _ []string) Command { return Command{Kind: KindBalance} }},
	{[]string{"PIN"}, parsePIN},
	{[]string{"SEND", "PAY", "TRANSFER"}, parseSend},
	{[]string{"DEPOSIT", "RECEIVE"}, func(_, _ []string) Command { return Command{Kind: KindDeposit} }},
	{[]string{"HISTORY", "TRANSACTIONS", "TXS"}, func(_, _ []string) Command { return Command{Kind: KindHistory} }},
	{[]string{"REDEEM", "VOUCHER", "CODE"}, parseRedeem},
	{[]string{"SWAP", "CONVERT"}, parseSwap},
	{[]string{"CASHOUT", "WITHDRAW"}, parseCashout},
	{[]string{"BUY", "TOPUP"}, parseBuy},
	{[]string{"BRIDGE"}, parseBridge},
	{[]string{"SAVE", "ADD"}, parseSave},
	{[]string{"CONTACTS", "BOOK"}, func(_, _ []string) Command { return Command{Kind: KindListContacts} }},
	{[]string{"CHAIN", "NETWORK"}, parseChain},
}

var keywordIndex = func() map[string]func(keys, vals []string) Command {
	index := make(map[string]func(keys, vals []string) Command)
	for _, f := range families {
		for _, kw := range f.keywords {
			index[kw] = f.parse
		}
	}
	return index
}()

// Parse turns raw SMS text into a Command. It is total: any input, including
// the empty string, yields a Command, falling back to KindUnrecognized.
func Parse(text string) Command {
	trimmed := strings.TrimSpace(text)
	vals := strings.Fields(trimmed)
	if len(vals) == 0 {
		return Command{Kind: KindUnrecognized}
	}

	keys := make([]string, len(vals))
	for i, v := range vals {
		keys[i] = strings.ToUpper(v)
	}

	if sub, ok := keywordIndex[keys[0]]; ok {
		return sub(keys, vals)
	}
	return Command{Kind: KindUnrecognized, Text: strings.ToUpper(trimmed)}
}

func parseJoin(_, vals []string) Command {
	cmd := Command{Kind: KindJoin}
	if len(vals) > 1 {
		cmd.Alias = vals[1]
	}
	return cmd
}

func parsePIN(_, vals []string) Command {
	cmd := Command{Kind: KindSetPIN}
	if len(vals) > 1 {
		cmd.PIN = vals[1]
	}
	return cmd
}

// SEND <amount> <token> [TO] <recipient...>
func parseSend(keys, vals []string) Command {
	if len(keys) < 4 {
		return unrecognized("Invalid SEND format. Use: SEND <amount> <token> TO <phone>")
	}

	amount, err := strconv.ParseFloat(keys[1], 64)
	if err != nil {
		return unrecognized("Invalid amount")
	}

	start := 3
	if keys[3] == "TO" {
		if len(keys) < 5 {
			return unrecognized("Missing recipient. Use: SEND <amount> <token> TO <phone>")
		}
		start = 4
	}

	return Command{
		Kind:      KindSend,
		Amount:    amount,
		Token:     keys[2],
		Recipient: strings.Join(vals[start:], " "),
	}
}

// SWAP <amount> <token>
func parseSwap(keys, _ []string) Command {
	if len(keys) < 3 {
		return unrecognized("Usage: SWAP <amount> <token>\nExample: SWAP 100 TXTC")
	}
	amount, err := strconv.ParseFloat(keys[1], 64)
	if err != nil {
		return unrecognized("Invalid amount")
	}
	return Command{Kind: KindSwap, Amount: amount, Token: keys[2]}
}

// CASHOUT <amount> <token>
func parseCashout(keys, _ []string) Command {
	if len(keys) < 3 {
		return unrecognized("Usage: CASHOUT <amount> <token>\nExample: CASHOUT 50 USDC")
	}
	amount, err := strconv.ParseFloat(keys[1], 64)
	if err != nil {
		return unrecognized("Invalid amount")
	}
	return Command{Kind: KindCashout, Amount: amount, Token: keys[2]}
}

// BUY <amount>
func parseBuy(keys, _ []string) Command {
	if len(keys) < 2 {
		return unrecognized("Usage: BUY <amount>\nExample: BUY 10")
	}
	amount, err := strconv.ParseFloat(keys[1], 64)
	if err != nil {
		return unrecognized("Invalid amount")
	}
	return Command{Kind: KindBuy, Amount: amount}
}

// BRIDGE <amount> <token> [FROM] <chain> [TO] <chain>
// Accepted surface forms, most explicit first:
//
//	BRIDGE 10 USDC FROM POLYGON TO BASE
//	BRIDGE 10 USDC FROM POLYGON BASE
//	BRIDGE 10 USDC POLYGON BASE
func parseBridge(keys, _ []string) Command {
	const usage = "Usage: BRIDGE <amount> <token> FROM <chain> TO <chain>"
	if len(keys) < 5 {
		return unrecognized(usage)
	}

	amount, err := strconv.ParseFloat(keys[1], 64)
	if err != nil {
		return unrecognized("Invalid amount")
	}

	cmd := Command{Kind: KindBridge, Amount: amount, Token: keys[2]}
	switch {
	case len(keys) >= 7 && keys[3] == "FROM" && keys[5] == "TO":
		cmd.FromChain = keys[4]
		cmd.ToChain = keys[6]
	case len(keys) >= 6 && keys[3] == "FROM":
		cmd.FromChain = keys[4]
		cmd.ToChain = keys[5]
	case keys[3] != "FROM":
		cmd.FromChain = keys[3]
		cmd.ToChain = keys[4]
	default:
		return unrecognized(usage)
	}
	return cmd
}

func parseRedeem(_, vals []string) Command {
	if len(vals) < 2 {
		return unrecognized("Usage: REDEEM <code>")
	}
	return Command{Kind: KindRedeem, Code: vals[1]}
}

// SAVE <name> <phone...> — the phone keeps any interior spaces.
func parseSave(_, vals []string) Command {
	if len(vals) < 3 {
		return unrecognized("Usage: SAVE <name> <phone>")
	}
	return Command{
		Kind:  KindSaveContact,
		Name:  vals[1],
		Phone: strings.Join(vals[2:], " "),
	}
}

func parseChain(_, vals []string) Command {
	if len(vals) < 2 {
		return unrecognized("Usage: CHAIN <polygon|base|eth|arb>")
	}
	return Command{Kind: KindSwitchChain, Chain: vals[1]}
}
