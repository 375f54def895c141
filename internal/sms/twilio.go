// Package sms is the Twilio transport: webhook decoding, signature
// validation, TwiML rendering and the outbound Messages API client.
package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client sends outbound SMS through the Twilio REST API.
type Client struct {
	rest *twilio.RestClient
	from string
}

// NewClient builds an outbound Twilio client.
func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// Send delivers body to the destination phone number. The underlying REST
// client manages its own request lifecycle, so the context is unused.
func (c *Client) Send(_ context.Context, to, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	if _, err := c.rest.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}
