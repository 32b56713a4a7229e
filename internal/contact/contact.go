// Package contact opens an external communication channel for a colleague.
//
// Chat channels try the desktop app first and fall back to the web URL when
// the app launch fails or does not finish within FallbackTimeout. Email and
// phone need the matching field and have no fallback.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"teamtz/internal/model"

	"github.com/rs/zerolog"
)

// FallbackTimeout bounds an app launch attempt.
const FallbackTimeout = 2 * time.Second

type Channel string

const (
	Teams   Channel = "teams"
	Slack   Channel = "slack"
	Discord Channel = "discord"
	Email   Channel = "email"
	Phone   Channel = "phone"
)

// Channels lists every channel in menu order.
func Channels() []Channel {
	return []Channel{Teams, Slack, Discord, Email, Phone}
}

func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Channels() {
		if c == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q (want teams|slack|discord|email|phone)", s)
}

// IsChat reports whether the channel is a chat app (announced with a ping
// notice and eligible for app-to-web fallback).
func (c Channel) IsChat() bool {
	return c == Teams || c == Slack || c == Discord
}

// MissingFieldError is returned when email or phone is required but unset.
type MissingFieldError struct {
	Name  string
	Field string
}

func (e MissingFieldError) Error() string {
	article := "a"
	if strings.HasPrefix(e.Field, "e") {
		article = "an"
	}
	return fmt.Sprintf("%s doesn't have %s %s set", e.Name, article, e.Field)
}

// Invocation is the external target for one channel. AppURL is empty for
// web-only channels.
type Invocation struct {
	AppURL string
	WebURL string
	// Notice is shown to the user before opening (e.g. a missing field that
	// downgrades the target).
	Notice string
}

// Plan builds the invocation for colleague c on channel ch.
func Plan(c model.Colleague, ch Channel, slackTeamID string) (Invocation, error) {
	email := strings.TrimSpace(c.Email)
	switch ch {
	case Teams:
		if email == "" {
			return Invocation{
				AppURL: "msteams://teams.microsoft.com",
				WebURL: "https://teams.microsoft.com",
				Notice: fmt.Sprintf("%s doesn't have an email address set. Add one for direct Teams chats; opening Teams instead.", c.Name),
			}, nil
		}
		q := "users=" + url.QueryEscape(email)
		return Invocation{
			AppURL: "msteams://teams.microsoft.com/l/chat/0/0?" + q,
			WebURL: "https://teams.microsoft.com/l/chat/0/0?" + q,
		}, nil
	case Slack:
		if email == "" {
			return Invocation{AppURL: "slack://", WebURL: "https://slack.com/app/A0F82E8CA-DM"}, nil
		}
		v := url.Values{}
		if team := strings.TrimSpace(slackTeamID); team != "" {
			v.Set("team", team)
		}
		v.Set("id", email)
		return Invocation{
			AppURL: "slack://user?" + v.Encode(),
			WebURL: "https://slack.com/app/A0F82E8CA-DM?" + v.Encode(),
		}, nil
	case Discord:
		return Invocation{WebURL: "https://discord.com/channels/@me"}, nil
	case Email:
		if email == "" {
			return Invocation{}, MissingFieldError{Name: c.Name, Field: "email address"}
		}
		hi := url.PathEscape("Hi " + c.Name + "!")
		return Invocation{WebURL: "mailto:" + email + "?subject=" + hi + "&body=" + hi}, nil
	case Phone:
		phone := strings.TrimSpace(c.Phone)
		if phone == "" {
			return Invocation{}, MissingFieldError{Name: c.Name, Field: "phone number"}
		}
		return Invocation{WebURL: "tel:" + phone}, nil
	default:
		return Invocation{}, fmt.Errorf("unknown channel %q", ch)
	}
}

// Opener hands a URL to the operating system.
type Opener interface {
	Open(ctx context.Context, target string) error
}

type Result struct {
	Channel Channel
	// Opened is the URL that was handed off last.
	Opened   string
	FellBack bool
	Notice   string
}

// Message is the user-facing confirmation line.
func (r Result) Message(name string) string {
	if r.Channel.IsChat() {
		return fmt.Sprintf("Opening %s to ping %s...", r.Channel, name)
	}
	return fmt.Sprintf("Opening %s for %s...", r.Channel, name)
}

type Dispatcher struct {
	Opener      Opener
	SlackTeamID string
	Timeout     time.Duration
	Log         zerolog.Logger
}

func NewDispatcher(o Opener, slackTeamID string, log zerolog.Logger) *Dispatcher {
	if o == nil {
		o = SystemOpener{}
	}
	return &Dispatcher{Opener: o, SlackTeamID: slackTeamID, Timeout: FallbackTimeout, Log: log}
}

// Dispatch opens channel ch for c. The app attempt is cancelled by its own
// timeout; any failure there falls back to the web URL.
func (d *Dispatcher) Dispatch(ctx context.Context, c model.Colleague, ch Channel) (Result, error) {
	inv, err := Plan(c, ch, d.SlackTeamID)
	if err != nil {
		return Result{Channel: ch}, err
	}
	res := Result{Channel: ch, Notice: inv.Notice}

	if inv.AppURL != "" {
		timeout := d.Timeout
		if timeout <= 0 {
			timeout = FallbackTimeout
		}
		actx, cancel := context.WithTimeout(ctx, timeout)
		err := d.Opener.Open(actx, inv.AppURL)
		cancel()
		if err == nil {
			res.Opened = inv.AppURL
			return res, nil
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return res, ctx.Err()
		}
		d.Log.Debug().Err(err).Str("channel", string(ch)).Str("app", inv.AppURL).Msg("app launch failed; using web")
		res.FellBack = true
	}

	if err := d.Opener.Open(ctx, inv.WebURL); err != nil {
		d.Log.Warn().Err(err).Str("channel", string(ch)).Str("url", inv.WebURL).Msg("open failed")
		return res, fmt.Errorf("open %s: %w", ch, err)
	}
	res.Opened = inv.WebURL
	return res, nil
}
