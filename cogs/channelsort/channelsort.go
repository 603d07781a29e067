// Package channelsort reorders a guild's text channels alphabetically,
// with a preview-and-confirm step before anything moves.
package channelsort

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/caretakerbot/caretaker"
)

// How long a proposed reorder stays valid.
const proposalTTL = 60 * time.Second

type proposal struct {
	userID  string
	expires time.Time
	moves   []*discordgo.Channel
}

type Cog struct {
	mu      sync.Mutex
	pending map[string]*proposal // keyed by guild ID
	now     func() time.Time
}

func New() *Cog {
	return &Cog{
		pending: make(map[string]*proposal),
		now:     time.Now,
	}
}

func (c *Cog) Name() string { return "channelsort" }

func (c *Cog) Register(b *caretaker.Bot) error {
	b.AddCommand("channelsort",
		"Sorts text channels alphabetically. Use `channelsort [category]` to preview, then `channelsort confirm`",
		c.run)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageChannels) {
		return "You need the Manage Channels permission to sort channels."
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "confirm":
		return c.confirm(ctx)
	case "cancel":
		return c.cancel(ctx)
	default:
		return c.propose(ctx, ctx.Rest(0))
	}
}

func (c *Cog) propose(ctx *caretaker.Context, category string) interface{} {
	channels, err := ctx.Session.GuildChannels(ctx.GuildID)
	if err != nil {
		return fmt.Sprintf("Error fetching channels - %v", err)
	}

	if category != "" {
		parentID := findCategory(channels, category)
		if parentID == "" {
			return fmt.Sprintf("No category named %q here.", category)
		}
		channels = inCategory(channels, parentID)
	}

	moves := sortPlan(channels)
	if len(moves) == 0 {
		return "Channels are already sorted, nothing to do."
	}

	preview := previewMoves(channels, moves)

	c.mu.Lock()
	c.pending[ctx.GuildID] = &proposal{
		userID:  ctx.Message.Author.ID,
		expires: c.now().Add(proposalTTL),
		moves:   moves,
	}
	c.mu.Unlock()

	return fmt.Sprintf("This will move %d channel(s):\n%s\nRun `channelsort confirm` within %v to apply, or `channelsort cancel`.",
		len(moves), preview, proposalTTL)
}

func (c *Cog) confirm(ctx *caretaker.Context) interface{} {
	c.mu.Lock()
	p, ok := c.pending[ctx.GuildID]
	if !ok {
		c.mu.Unlock()
		return "Nothing to confirm. Run `channelsort` first."
	}
	if c.now().After(p.expires) {
		delete(c.pending, ctx.GuildID)
		c.mu.Unlock()
		return "That proposal expired. Run `channelsort` again."
	}
	if p.userID != ctx.Message.Author.ID {
		// The proposal stays live so the proposer can still confirm
		// it.
		c.mu.Unlock()
		return "Only the member who proposed the sort can confirm it."
	}
	delete(c.pending, ctx.GuildID)
	c.mu.Unlock()

	if err := ctx.Session.GuildChannelsReorder(ctx.GuildID, p.moves); err != nil {
		return fmt.Sprintf("Error reordering channels - %v", err)
	}
	return fmt.Sprintf("Done, moved %d channel(s).", len(p.moves))
}

func (c *Cog) cancel(ctx *caretaker.Context) interface{} {
	c.mu.Lock()
	_, ok := c.pending[ctx.GuildID]
	delete(c.pending, ctx.GuildID)
	c.mu.Unlock()

	if !ok {
		return "Nothing to cancel."
	}
	return "Proposal discarded."
}

// findCategory returns the ID of the category channel whose name
// matches name (case-insensitive), or "".
func findCategory(channels []*discordgo.Channel, name string) string {
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && strings.EqualFold(ch.Name, name) {
			return ch.ID
		}
	}
	return ""
}

// inCategory filters channels down to those parented to parentID.
func inCategory(channels []*discordgo.Channel, parentID string) []*discordgo.Channel {
	var out []*discordgo.Channel
	for _, ch := range channels {
		if ch.ParentID == parentID {
			out = append(out, ch)
		}
	}
	return out
}

// sortPlan computes the channel moves needed to put every group of
// text channels (grouped by parent category) in alphabetical order.
// The sort is stable, so channels with equal names keep their relative
// order. Each group keeps the exact set of positions it already
// occupies. Only channels whose position actually changes are
// returned.
func sortPlan(channels []*discordgo.Channel) []*discordgo.Channel {
	groups := make(map[string][]*discordgo.Channel)
	var order []string
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if _, seen := groups[ch.ParentID]; !seen {
			order = append(order, ch.ParentID)
		}
		groups[ch.ParentID] = append(groups[ch.ParentID], ch)
	}

	var moves []*discordgo.Channel
	for _, parent := range order {
		group := groups[parent]

		positions := make([]int, len(group))
		for i, ch := range group {
			positions[i] = ch.Position
		}
		sort.Ints(positions)

		// Consider the group in its current on-screen order so the
		// stable sort preserves ties as the guild sees them.
		sorted := make([]*discordgo.Channel, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Position < sorted[j].Position
		})
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})

		for i, ch := range sorted {
			if ch.Position != positions[i] {
				moved := *ch
				moved.Position = positions[i]
				moves = append(moves, &moved)
			}
		}
	}
	return moves
}

// previewMoves renders one line per moved channel.
func previewMoves(channels []*discordgo.Channel, moves []*discordgo.Channel) string {
	old := make(map[string]int, len(channels))
	for _, ch := range channels {
		old[ch.ID] = ch.Position
	}

	var sb strings.Builder
	for _, ch := range moves {
		fmt.Fprintf(&sb, "`#%s` %d -> %d\n", ch.Name, old[ch.ID], ch.Position)
	}
	return strings.TrimRight(sb.String(), "\n")
}
