// Package sortinghat assigns members to "house" roles, always putting
// the next member into the house with the fewest members.
package sortinghat

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/caretakerbot/caretaker"
)

const cogName = "sortinghat"

// settings is the per-guild brain record.
type settings struct {
	Houses []string `json:"houses"` // role names, in tie-break order
}

type Cog struct {
	bot *caretaker.Bot
}

func New() *Cog {
	return &Cog{}
}

func (c *Cog) Name() string { return cogName }

func (c *Cog) Register(b *caretaker.Bot) error {
	c.bot = b
	b.AddCommand("sortinghat",
		"Balanced house assignment. `sortinghat houses <a,b,c>`, `sortinghat me`, `sortinghat all`, `sortinghat tally`",
		c.run)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}

	switch strings.ToLower(ctx.Arg(0)) {
	case "houses":
		return c.setHouses(ctx)
	case "me":
		return c.sortMe(ctx)
	case "all":
		return c.sortAll(ctx)
	case "tally":
		return c.tally(ctx)
	default:
		return "Usage: `sortinghat houses <a,b,c>`, `sortinghat me`, `sortinghat all`, `sortinghat tally`"
	}
}

func (c *Cog) setHouses(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageServer) {
		return "You need the Manage Server permission to configure houses."
	}

	var houses []string
	for _, h := range strings.Split(ctx.Rest(1), ",") {
		if h = strings.TrimSpace(h); h != "" {
			houses = append(houses, h)
		}
	}
	if len(houses) < 2 {
		return "Give at least two house role names, like `sortinghat houses Otters, Ravens, Badgers`."
	}

	// Every house must already exist as a role.
	if _, err := c.houseRoles(ctx, houses); err != nil {
		return err.Error()
	}

	if err := c.bot.Brain.Put(cogName, ctx.GuildID, "settings", settings{Houses: houses}); err != nil {
		return fmt.Sprintf("Error saving houses - %v", err)
	}
	return fmt.Sprintf("Houses set: %s.", strings.Join(houses, ", "))
}

func (c *Cog) sortMe(ctx *caretaker.Context) interface{} {
	houses, roleIDs, counts, errResp := c.load(ctx)
	if errResp != "" {
		return errResp
	}

	member, err := ctx.Session.GuildMember(ctx.GuildID, ctx.Message.Author.ID)
	if err != nil {
		return fmt.Sprintf("Error fetching your member record - %v", err)
	}
	if h := houseOf(member, roleIDs); h >= 0 {
		return fmt.Sprintf("You're already in %s.", houses[h])
	}

	idx := pick(counts)
	if err := ctx.Session.GuildMemberRoleAdd(ctx.GuildID, member.User.ID, roleIDs[idx]); err != nil {
		return fmt.Sprintf("Error assigning role - %v", err)
	}
	return fmt.Sprintf("The hat has spoken: welcome to %s!", houses[idx])
}

func (c *Cog) sortAll(ctx *caretaker.Context) interface{} {
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageServer) {
		return "You need the Manage Server permission to sort everyone."
	}

	houses, roleIDs, counts, errResp := c.load(ctx)
	if errResp != "" {
		return errResp
	}

	members, err := c.allMembers(ctx.GuildID)
	if err != nil {
		return fmt.Sprintf("Error fetching members - %v", err)
	}

	assigned := 0
	for _, m := range members {
		if m.User.Bot || houseOf(m, roleIDs) >= 0 {
			continue
		}
		idx := pick(counts)
		if err := ctx.Session.GuildMemberRoleAdd(ctx.GuildID, m.User.ID, roleIDs[idx]); err != nil {
			c.bot.LogError("Error assigning house to "+m.User.ID+" -", err)
			continue
		}
		counts[idx]++
		assigned++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sorted %d member(s). Standing:", assigned)
	for i, h := range houses {
		fmt.Fprintf(&sb, " %s %d", h, counts[i])
		if i < len(houses)-1 {
			sb.WriteString(",")
		}
	}
	return sb.String()
}

func (c *Cog) tally(ctx *caretaker.Context) interface{} {
	houses, _, counts, errResp := c.load(ctx)
	if errResp != "" {
		return errResp
	}

	e := caretaker.NewEmbed().SetTitle("House standings")
	for i, h := range houses {
		e.AddField(h, fmt.Sprintf("%d member(s)", counts[i]))
	}
	e.SetAllFieldsInline()
	return e
}

// load resolves the configured houses into role IDs and current member
// counts. The string return is a user-facing error, "" on success.
func (c *Cog) load(ctx *caretaker.Context) ([]string, []string, []int, string) {
	var s settings
	if err := c.bot.Brain.Get(cogName, ctx.GuildID, "settings", &s); err != nil {
		return nil, nil, nil, "No houses configured. Use `sortinghat houses <a,b,c>` first."
	}

	roleIDs, err := c.houseRoles(ctx, s.Houses)
	if err != nil {
		return nil, nil, nil, err.Error()
	}

	members, err := c.allMembers(ctx.GuildID)
	if err != nil {
		return nil, nil, nil, fmt.Sprintf("Error fetching members - %v", err)
	}
	counts := tallyHouses(members, roleIDs)

	return s.Houses, roleIDs, counts, ""
}

// houseRoles maps house names to role IDs, erroring on the first house
// with no matching role.
func (c *Cog) houseRoles(ctx *caretaker.Context, houses []string) ([]string, error) {
	roles, err := ctx.Session.GuildRoles(ctx.GuildID)
	if err != nil {
		return nil, fmt.Errorf("Error fetching roles - %v", err)
	}

	ids := make([]string, len(houses))
	for i, h := range houses {
		for _, r := range roles {
			if strings.EqualFold(r.Name, h) {
				ids[i] = r.ID
				break
			}
		}
		if ids[i] == "" {
			return nil, fmt.Errorf("No role named %q here. Create it first.", h)
		}
	}
	return ids, nil
}

func (c *Cog) allMembers(guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		members, err := c.bot.Session.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		all = append(all, members...)
		if len(members) < 1000 {
			return all, nil
		}
		after = members[len(members)-1].User.ID
	}
}

// houseOf returns the index of the house role the member already
// holds, or -1.
func houseOf(m *discordgo.Member, roleIDs []string) int {
	for i, id := range roleIDs {
		for _, r := range m.Roles {
			if r == id {
				return i
			}
		}
	}
	return -1
}

// tallyHouses counts members per house role.
func tallyHouses(members []*discordgo.Member, roleIDs []string) []int {
	counts := make([]int, len(roleIDs))
	for _, m := range members {
		if h := houseOf(m, roleIDs); h >= 0 {
			counts[h]++
		}
	}
	return counts
}

// pick chooses the house with the fewest members. Ties go to the
// earlier house in the configured order, which keeps bulk runs stable.
func pick(counts []int) int {
	idx := 0
	for i, n := range counts {
		if n < counts[idx] {
			idx = i
		}
	}
	return idx
}
