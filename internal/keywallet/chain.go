package keywallet

import "strings"

// Chain identifies a supported settlement network.
type Chain struct {
	Name        string
	ChainID     uint64
	NativeToken string
}

var chains = []struct {
	chain   Chain
	aliases []string
}{
	{Chain{Name: "Polygon", ChainID: 137, NativeToken: "MATIC"}, []string{"polygon", "matic", "pol"}},
	{Chain{Name: "Base", ChainID: 8453, NativeToken: "ETH"}, []string{"base"}},
	{Chain{Name: "Ethereum", ChainID: 1, NativeToken: "ETH"}, []string{"eth", "ethereum", "mainnet"}},
	{Chain{Name: "Arbitrum", ChainID: 42161, NativeToken: "ETH"}, []string{"arb", "arbitrum"}},
}

// ChainFromInput resolves a user-supplied chain name or alias,
// case-insensitively. The second return is false for unknown chains.
func ChainFromInput(input string) (Chain, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	for _, entry := range chains {
		for _, alias := range entry.aliases {
			if alias == needle {
				return entry.chain, true
			}
		}
	}
	return Chain{}, false
}

// ChainNames lists the accepted primary aliases for the CHAIN usage reply.
func ChainNames() string {
	names := make([]string, 0, len(chains))
	for _, entry := range chains {
		names = append(names, entry.aliases[0])
	}
	return strings.Join(names, ", ")
}
