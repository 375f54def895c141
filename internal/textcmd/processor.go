package textcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/textchain/sms-gateway/internal/chainapi"
	"github.com/textchain/sms-gateway/internal/contact"
	"github.com/textchain/sms-gateway/internal/deposit"
	"github.com/textchain/sms-gateway/internal/directory"
	"github.com/textchain/sms-gateway/internal/keywallet"
	"github.com/textchain/sms-gateway/internal/reply"
	"github.com/textchain/sms-gateway/internal/resolve"
)

// ChainAPI is the settlement backend surface the processor dispatches to.
type ChainAPI interface {
	Balance(ctx context.Context, address string) (chainapi.Balances, error)
	Send(ctx context.Context, privateKeyHex, toAddress, amount string) (chainapi.SendResult, error)
	Swap(ctx context.Context, privateKeyHex, tokenAmount string) (chainapi.SwapResult, error)
	Redeem(ctx context.Context, voucherCode, address string) (chainapi.RedeemResult, error)
	Buy(ctx context.Context, phone, amount string) error
	Bridge(ctx context.Context, privateKeyHex, amount, token, fromChain, toChain string) error
	CheckName(ctx context.Context, name string) (bool, error)
	RegisterName(ctx context.Context, name, address string) error
}

// CashoutService requests stablecoin payouts.
type CashoutService interface {
	Request(ctx context.Context, phone, address, amount, token string) error
}

// Synchronous downstream calls block the SMS round-trip, so they get a hard
// ceiling independent of the transport's read timeout.
const syncCallTimeout = 10 * time.Second

const historyLimit = 5

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,16}$`)

// Processor executes parsed commands. Every inbound message is independent:
// the processor holds no per-sender state between calls. Repositories may be
// nil, in which case the affected commands degrade to fixed offline replies.
type Processor struct {
	users    *directory.Service
	contacts contact.Repository
	deposits deposit.Repository
	chain    ChainAPI
	cashout  CashoutService
	resolver *resolve.Resolver
	logger   *slog.Logger

	dispatchTimeout time.Duration
}

// Options carries the processor's collaborators.
type Options struct {
	Users           *directory.Service
	Contacts        contact.Repository
	Deposits        deposit.Repository
	Chain           ChainAPI
	Cashout         CashoutService
	Resolver        *resolve.Resolver
	Logger          *slog.Logger
	DispatchTimeout time.Duration
}

// NewProcessor wires a processor from its collaborators.
func NewProcessor(opts Options) *Processor {
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Processor{
		users:           opts.Users,
		contacts:        opts.Contacts,
		deposits:        opts.Deposits,
		chain:           opts.Chain,
		cashout:         opts.Cashout,
		resolver:        opts.Resolver,
		logger:          opts.Logger,
		dispatchTimeout: opts.DispatchTimeout,
	}
}

// Process parses and executes one inbound message and returns the reply
// text. It never returns an error: every failure mode collapses to a reply.
func (p *Processor) Process(ctx context.Context, from, body string) string {
	cmd := Parse(body)
	p.logger.Debug("processing command", "from", from, "kind", int(cmd.Kind))
	return p.execute(ctx, from, cmd)
}

func (p *Processor) execute(ctx context.Context, from string, cmd Command) string {
	switch cmd.Kind {
	case KindHelp:
		return helpText
	case KindJoin:
		return p.join(ctx, from, cmd.Alias)
	case KindBalance:
		return p.balance(ctx, from)
	case KindSetPIN:
		return p.setPIN(ctx, from, cmd.PIN)
	case KindSend:
		return p.send(ctx, from, cmd)
	case KindDeposit:
		return p.deposit(ctx, from)
	case KindHistory:
		return p.history(ctx, from)
	case KindRedeem:
		return p.redeem(ctx, from, cmd.Code)
	case KindSwap:
		return p.swap(ctx, from, cmd)
	case KindCashout:
		return p.cashoutRequest(ctx, from, cmd)
	case KindBuy:
		return p.buy(ctx, from, cmd)
	case KindBridge:
		return p.bridge(ctx, from, cmd)
	case KindSaveContact:
		return p.saveContact(ctx, from, cmd)
	case KindListContacts:
		return p.listContacts(ctx, from)
	case KindSwitchChain:
		return p.switchChain(ctx, from, cmd.Chain)
	default:
		return p.unrecognized(cmd)
	}
}

const helpText = "TextChain Commands:\n" +
	"JOIN - Create wallet\n" +
	"BALANCE - Check balance\n" +
	"SEND <amt> <token> TO <phone> - Send tokens\n" +
	"SWAP <amt> <token> - Swap tokens for ETH\n" +
	"CASHOUT <amt> <token> - Cash out\n" +
	"BUY <amt> - Buy tokens with airtime\n" +
	"BRIDGE <amt> <token> <from> <to> - Move chains\n" +
	"REDEEM <code> - Redeem voucher\n" +
	"DEPOSIT - Get deposit address\n" +
	"HISTORY - Recent transactions\n" +
	"SAVE <name> <phone> - Save contact\n" +
	"CONTACTS - List contacts\n" +
	"CHAIN <name> - Switch network\n" +
	"PIN <code> - Set PIN"

// requireAccount loads the sender's account, translating every failure mode
// into a ready-to-send reply.
func (p *Processor) requireAccount(ctx context.Context, from string) (directory.Account, string) {
	if p.users == nil {
		return directory.Account{}, reply.DBOffline
	}
	account, err := p.users.Find(ctx, from)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Account{}, reply.NoWallet
		}
		p.logger.Error("account lookup failed", "error", err)
		return directory.Account{}, reply.TryLater
	}
	return account, ""
}

func (p *Processor) join(ctx context.Context, from, alias string) string {
	if p.users == nil {
		return reply.DBOffline
	}

	account, created, err := p.users.Join(ctx, from)
	if err != nil {
		p.logger.Error("join failed", "error", err)
		return reply.TryLater
	}

	var text string
	if created {
		text = fmt.Sprintf("Wallet created!\n\n%s\n\nReply DEPOSIT to fund it.", account.Address)
	} else {
		text = fmt.Sprintf("Welcome back!\n\nYour wallet:\n%s\n\nReply BALANCE or DEPOSIT", keywallet.Abbreviate(account.Address))
	}

	if alias != "" {
		text += "\n\n" + p.claimAlias(ctx, from, account.Address, alias)
	}
	return text
}

// claimAlias runs the one-shot availability check, on-chain registration and
// persistence for a JOIN alias. Failures never fail the JOIN itself.
func (p *Processor) claimAlias(ctx context.Context, phone, address, alias string) string {
	if !aliasPattern.MatchString(alias) {
		return "Alias must be 3-16 letters or numbers."
	}

	callCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
	defer cancel()

	available, err := p.chain.CheckName(callCtx, alias)
	if err != nil {
		p.logger.Error("alias availability check failed", "alias", alias, "error", err)
		return "Alias claim failed. Try later."
	}
	if !available {
		return fmt.Sprintf("Alias %s is taken.", alias)
	}

	if err := p.chain.RegisterName(callCtx, alias, address); err != nil {
		p.logger.Error("alias registration failed", "alias", alias, "error", err)
		return "Alias claim failed. Try later."
	}
	if err := p.users.SetAlias(ctx, phone, alias); err != nil {
		p.logger.Error("alias persistence failed", "alias", alias, "error", err)
	}
	return fmt.Sprintf("Claimed alias: %s", alias)
}

func (p *Processor) balance(ctx context.Context, from string) string {
	if p.users == nil {
		return "Balance: $0.00\nDB offline."
	}
	account, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}

	callCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
	defer cancel()

	balances, err := p.chain.Balance(callCtx, account.Address)
	if err != nil {
		var rej *chainapi.Rejection
		if errors.As(err, &rej) {
			return "Error fetching balance."
		}
		p.logger.Error("balance query failed", "error", err)
		if errors.Is(err, chainapi.ErrMalformedResponse) {
			return reply.BadResponse
		}
		return reply.NetworkError
	}

	txtc, _ := strconv.ParseFloat(balances.TXTC, 64)
	eth, _ := strconv.ParseFloat(balances.ETH, 64)
	if txtc > 0 || eth > 0 {
		return fmt.Sprintf("Balance:\n%v TXTC\n%v ETH\n\nSepolia testnet", txtc, eth)
	}
	return "Balance: $0.00\n\nReply DEPOSIT to fund wallet."
}

func (p *Processor) setPIN(ctx context.Context, from, pin string) string {
	if pin == "" {
		return "Reply: PIN <4-6 digits>\nExample: PIN 1234"
	}
	if !validPIN(pin) {
		return "PIN must be 4-6 digits.\nExample: PIN 1234"
	}

	if p.users == nil {
		return reply.DBOffline
	}
	if err := p.users.SetPIN(ctx, from, pin); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return reply.NoWallet
		}
		p.logger.Error("pin update failed", "error", err)
		return reply.TryLater
	}
	return "PIN set!"
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p *Processor) send(ctx context.Context, from string, cmd Command) string {
	if cmd.Token != "TXTC" {
		return fmt.Sprintf("Only TXTC transfers supported.\nYou have: %s TXTC", cmd.Token)
	}

	sender, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}

	address, fail := p.resolver.Resolve(ctx, from, cmd.Recipient)
	if fail != nil {
		return fail.Reply
	}

	callCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
	defer cancel()

	amount := formatAmount(cmd.Amount)
	if _, err := p.chain.Send(callCtx, sender.EncryptedKey, address, amount); err != nil {
		var rej *chainapi.Rejection
		if errors.As(err, &rej) {
			return reply.Classify(reply.ActionTransfer, rej.Message)
		}
		p.logger.Error("transfer failed", "error", err)
		if errors.Is(err, chainapi.ErrMalformedResponse) {
			return reply.BadResponse
		}
		return reply.NetworkError
	}

	return fmt.Sprintf("Sent %s TXTC to %s!\n\nReply BALANCE to check.", amount, cmd.Recipient)
}

func (p *Processor) deposit(ctx context.Context, from string) string {
	if p.users == nil {
		return "DB offline. Reply JOIN first."
	}
	account, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}
	return fmt.Sprintf("Deposit MATIC to:\n%s\n\nPolygon Amoy testnet", account.Address)
}

func (p *Processor) history(ctx context.Context, from string) string {
	if _, errReply := p.requireAccount(ctx, from); errReply != "" {
		return errReply
	}

	if p.deposits != nil {
		deposits, err := p.deposits.Recent(ctx, from, historyLimit)
		if err == nil && len(deposits) > 0 {
			lines := make([]string, 0, len(deposits))
			for _, d := range deposits {
				lines = append(lines, fmt.Sprintf("$%.2f via %s", d.Amount, d.Source))
			}
			return "Recent deposits:\n" + strings.Join(lines, "\n")
		}
		if err != nil {
			p.logger.Error("deposit history failed", "error", err)
		}
	}
	return "No transactions yet.\nReply REDEEM <code> to add funds."
}

func (p *Processor) redeem(ctx context.Context, from, code string) string {
	account, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}

	callCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
	defer cancel()

	result, err := p.chain.Redeem(callCtx, code, account.Address)
	if err != nil {
		var rej *chainapi.Rejection
		if errors.As(err, &rej) {
			return reply.Classify(reply.ActionRedemption, rej.Message)
		}
		p.logger.Error("redeem failed", "error", err)
		if errors.Is(err, chainapi.ErrMalformedResponse) {
			return reply.BadResponse
		}
		return reply.NetworkError
	}

	return fmt.Sprintf("Voucher redeemed!\n\n%s ETH credited.\n\nReply BALANCE to check.", result.EthAmount)
}

func (p *Processor) swap(ctx context.Context, from string, cmd Command) string {
	if cmd.Token != "TXTC" {
		return fmt.Sprintf("Only TXTC swaps supported.\nYou have: %s TXTC", cmd.Token)
	}

	account, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}

	amount := formatAmount(cmd.Amount)
	p.detach("swap", func(ctx context.Context) error {
		_, err := p.chain.Swap(ctx, account.EncryptedKey, amount)
		return err
	})

	return fmt.Sprintf("Swapping %s TXTC...\nYou'll get an SMS when complete.", amount)
}

func (p *Processor) cashoutRequest(ctx context.Context, from string, cmd Command) string {
	if p.cashout == nil {
		return "Cashout unavailable. Try later."
	}

	account, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}

	amount := formatAmount(cmd.Amount)
	token := cmd.Token
	p.detach("cashout", func(ctx context.Context) error {
		return p.cashout.Request(ctx, from, account.Address, amount, token)
	})

	return fmt.Sprintf("Cashing out %s %s...\nYou'll get an SMS when complete.", amount, token)
}

func (p *Processor) buy(ctx context.Context, from string, cmd Command) string {
	if _, errReply := p.requireAccount(ctx, from); errReply != "" {
		return errReply
	}

	amount := formatAmount(cmd.Amount)
	p.detach("buy", func(ctx context.Context) error {
		return p.chain.Buy(ctx, from, amount)
	})

	return fmt.Sprintf("Buying %s TXTC with airtime...\nYou'll get an SMS when complete.", amount)
}

func (p *Processor) bridge(ctx context.Context, from string, cmd Command) string {
	fromChain, ok := keywallet.ChainFromInput(cmd.FromChain)
	if !ok {
		return unknownChainReply(cmd.FromChain)
	}
	toChain, ok := keywallet.ChainFromInput(cmd.ToChain)
	if !ok {
		return unknownChainReply(cmd.ToChain)
	}

	account, errReply := p.requireAccount(ctx, from)
	if errReply != "" {
		return errReply
	}

	amount := formatAmount(cmd.Amount)
	token := cmd.Token
	p.detach("bridge", func(ctx context.Context) error {
		return p.chain.Bridge(ctx, account.EncryptedKey, amount, token, fromChain.Name, toChain.Name)
	})

	return fmt.Sprintf("Bridging %s %s from %s to %s...\nYou'll get an SMS when complete.",
		amount, token, fromChain.Name, toChain.Name)
}

func (p *Processor) saveContact(ctx context.Context, from string, cmd Command) string {
	if _, errReply := p.requireAccount(ctx, from); errReply != "" {
		return errReply
	}
	if p.contacts == nil {
		return "Address book offline."
	}

	c := contact.Contact{
		OwnerPhone: from,
		Name:       cmd.Name,
		CreatedAt:  time.Now().UTC(),
	}
	if keywallet.IsAddress(cmd.Phone) {
		c.Address = cmd.Phone
	} else {
		c.Phone = cmd.Phone
	}

	if err := p.contacts.Add(ctx, c); err != nil {
		p.logger.Error("save contact failed", "error", err)
		return "Error saving contact."
	}
	return fmt.Sprintf("Saved %s as %s.", cmd.Phone, cmd.Name)
}

func (p *Processor) listContacts(ctx context.Context, from string) string {
	if _, errReply := p.requireAccount(ctx, from); errReply != "" {
		return errReply
	}
	if p.contacts == nil {
		return "Address book offline."
	}

	contacts, err := p.contacts.List(ctx, from)
	if err != nil {
		p.logger.Error("list contacts failed", "error", err)
		return "Error loading contacts."
	}
	if len(contacts) == 0 {
		return "No contacts yet.\n\nSAVE <name> <phone>"
	}

	if len(contacts) > historyLimit {
		contacts = contacts[:historyLimit]
	}
	lines := make([]string, 0, len(contacts))
	for _, c := range contacts {
		lines = append(lines, c.SMSLine())
	}
	return "Contacts:\n" + strings.Join(lines, "\n")
}

func (p *Processor) switchChain(ctx context.Context, from, input string) string {
	if _, errReply := p.requireAccount(ctx, from); errReply != "" {
		return errReply
	}
	chain, ok := keywallet.ChainFromInput(input)
	if !ok {
		return unknownChainReply(input)
	}
	return fmt.Sprintf("Switched to %s!\n\nChain ID: %d\nNative: %s", chain.Name, chain.ChainID, chain.NativeToken)
}

func unknownChainReply(input string) string {
	return fmt.Sprintf("Unknown chain: %s\n\nAvailable: %s", input, keywallet.ChainNames())
}

func (p *Processor) unrecognized(cmd Command) string {
	if cmd.Usage != "" {
		return cmd.Usage
	}
	if cmd.Text == "" {
		return "Welcome to TextChain!\n\nReply HELP for commands."
	}
	echo := cmd.Text
	if runes := []rune(echo); len(runes) > 15 {
		echo = string(runes[:15])
	}
	return fmt.Sprintf("Unknown: %s\n\nReply HELP for commands.", echo)
}

// detach issues a downstream call whose result is deliberately discarded.
// The backend reports completion through its own notification path, so the
// user gets an immediate acknowledgement instead of waiting out an SMS
// round-trip. The call gets a fresh context: the inbound request's context
// ends as soon as the reply is written.
func (p *Processor) detach(name string, call func(ctx context.Context) error) {
	dispatchID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), p.dispatchTimeout)
	go func() {
		defer cancel()
		if err := call(ctx); err != nil {
			p.logger.Debug("detached call finished with error", "call", name, "dispatch_id", dispatchID, "error", err)
		}
	}()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
