package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"pack-manager/src/logutil"
	"pack-manager/src/notify"
	"pack-manager/src/worker"
)

// guildReadyTimeout bounds how long readiness waits for guilds announced in
// the Ready event to stream in.
const guildReadyTimeout = 2 * time.Second

// Client is a Discord bot connection implementing notify.Client. Lookups and
// sends run on its own worker loop.
type Client struct {
	session *discordgo.Session
	ready   *notify.Readiness
	loop    *worker.Loop
	log     *zap.SugaredLogger
	guilds  *guildTracker
	open    func() error

	stopOnce sync.Once
	stopped  atomic.Bool
}

func New(token string, ready *notify.Readiness, log *zap.SugaredLogger) (*Client, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	log.Infow("discord session created", "token", logutil.RedactKey(token))

	c := &Client{
		session: s,
		ready:   ready,
		loop:    worker.New(8, log.Named("discord-loop")),
		log:     log,
		open:    s.Open,
	}
	c.guilds = newGuildTracker(func() {
		if c.ready.MarkReady() {
			c.log.Infow("discord client ready", "user", c.userName())
		}
	})
	s.AddHandler(c.onReady)
	s.AddHandler(c.onGuildCreate)
	return c, nil
}

// Start opens the gateway connection in the background and returns at once.
// A failed open is logged and readiness stays unset, so notifications report
// notify.ErrNotReady. The connection is closed when ctx is cancelled or Stop
// is called.
func (c *Client) Start(ctx context.Context) {
	go func() {
		if err := c.open(); err != nil {
			c.log.Errorw("failed to open discord connection, notifications disabled", "error", err)
			return
		}
		if c.stopped.Load() {
			_ = c.session.Close()
			return
		}
		c.log.Infow("discord gateway connected")
	}()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
}

// Stop closes the worker loop and then the gateway connection.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		c.loop.Close()
		c.guilds.stop()
		if err := c.session.Close(); err != nil {
			c.log.Warnw("discord close failed", "error", err)
		}
		c.log.Infow("discord connection closed")
	})
}

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	ids := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		ids = append(ids, g.ID)
	}
	c.log.Infow("discord gateway ready", "user", r.User.Username, "guilds", len(ids))
	c.guilds.expect(ids, guildReadyTimeout)
}

func (c *Client) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	c.guilds.arrived(g.ID)
}

func (c *Client) userName() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.Username
}

// Schedule implements notify.Client.
func (c *Client) Schedule(fn func(ctx context.Context)) bool {
	return c.loop.Submit(fn)
}

// FindGroup implements notify.Client.
func (c *Client) FindGroup(name string) (notify.Group, bool) {
	st := c.session.State
	st.RLock()
	defer st.RUnlock()
	g := findGuild(st.Guilds, name)
	if g == nil {
		return notify.Group{}, false
	}
	return notify.Group{ID: g.ID, Name: g.Name}, true
}

// FindChannel implements notify.Client.
func (c *Client) FindChannel(g notify.Group, name string) (notify.Channel, bool) {
	st := c.session.State
	st.RLock()
	defer st.RUnlock()
	for _, guild := range st.Guilds {
		if guild == nil || guild.ID != g.ID {
			continue
		}
		if ch := findTextChannel(guild.Channels, name); ch != nil {
			return notify.Channel{ID: ch.ID, Name: ch.Name}, true
		}
		break
	}
	return notify.Channel{}, false
}

// Send implements notify.Client: the header with the attachment, then the
// footer as its own message.
func (c *Client) Send(ctx context.Context, ch notify.Channel, msg notify.Message) error {
	data := &discordgo.MessageSend{Content: msg.Header}
	if len(msg.Attachment) > 0 {
		data.Files = []*discordgo.File{{
			Name:        msg.FileName,
			ContentType: "image/png",
			Reader:      bytes.NewReader(msg.Attachment),
		}}
	}
	if _, err := c.session.ChannelMessageSendComplex(ch.ID, data, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send update to #%s: %w", ch.Name, err)
	}
	if msg.Footer == "" {
		return nil
	}
	if _, err := c.session.ChannelMessageSend(ch.ID, msg.Footer, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send closing banner to #%s: %w", ch.Name, err)
	}
	return nil
}

func findGuild(guilds []*discordgo.Guild, name string) *discordgo.Guild {
	for _, g := range guilds {
		if g != nil && g.Name == name {
			return g
		}
	}
	return nil
}

func findTextChannel(channels []*discordgo.Channel, name string) *discordgo.Channel {
	for _, ch := range channels {
		if ch != nil && ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch
		}
	}
	return nil
}
