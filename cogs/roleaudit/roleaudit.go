// Package roleaudit reports which roles in a guild grant elevated
// permissions, and who holds them.
package roleaudit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/caretakerbot/caretaker"
)

// elevated lists the permissions worth flagging, in report order.
var elevated = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrator"},
	{discordgo.PermissionManageServer, "Manage Server"},
	{discordgo.PermissionManageRoles, "Manage Roles"},
	{discordgo.PermissionManageChannels, "Manage Channels"},
	{discordgo.PermissionManageWebhooks, "Manage Webhooks"},
	{discordgo.PermissionBanMembers, "Ban Members"},
	{discordgo.PermissionKickMembers, "Kick Members"},
	{discordgo.PermissionMentionEveryone, "Mention Everyone"},
}

// Border color for audit report embeds.
const reportColor = 0xE67E22

// finding is one flagged role.
type finding struct {
	Role        *discordgo.Role
	Permissions []string
}

type Cog struct {
	bot *caretaker.Bot
}

func New() *Cog {
	return &Cog{}
}

func (c *Cog) Name() string { return "roleaudit" }

func (c *Cog) Register(b *caretaker.Bot) error {
	c.bot = b
	b.AddCommand("roleaudit",
		"Reports roles with elevated permissions. `roleaudit`, `roleaudit role <name>`",
		c.run)
	return nil
}

func (c *Cog) run(ctx *caretaker.Context) interface{} {
	if ctx.GuildID == "" {
		return "This command only works in a server."
	}
	if !ctx.Session.HasPermission(ctx.Message, discordgo.PermissionManageRoles) {
		return "You need the Manage Roles permission to audit roles."
	}

	roles, err := ctx.Session.GuildRoles(ctx.GuildID)
	if err != nil {
		return fmt.Sprintf("Error fetching roles - %v", err)
	}

	if strings.ToLower(ctx.Arg(0)) == "role" {
		return c.auditOne(ctx, roles, ctx.Rest(1))
	}
	return c.auditAll(ctx, roles)
}

func (c *Cog) auditAll(ctx *caretaker.Context, roles []*discordgo.Role) interface{} {
	findings := audit(roles)
	if len(findings) == 0 {
		return "No role here grants elevated permissions."
	}

	counts := c.memberCounts(ctx.GuildID)

	e := caretaker.NewEmbed().SetTitle("Role permission audit").SetColor(reportColor)
	e.SetDescription(fmt.Sprintf("%d of %d roles grant elevated permissions.", len(findings), len(roles)))
	for _, f := range findings {
		value := strings.Join(f.Permissions, ", ")
		if counts != nil {
			value += fmt.Sprintf("\n%d member(s)", counts[f.Role.ID])
		}
		e.AddField(f.Role.Name, value)
	}
	return e
}

func (c *Cog) auditOne(ctx *caretaker.Context, roles []*discordgo.Role, name string) interface{} {
	if name == "" {
		return "Give a role name, like `roleaudit role Moderators`."
	}
	var role *discordgo.Role
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			role = r
			break
		}
	}
	if role == nil {
		return fmt.Sprintf("No role named %q here.", name)
	}

	perms := elevatedPermissions(role.Permissions)
	if len(perms) == 0 {
		return fmt.Sprintf("%q grants no elevated permissions.", role.Name)
	}

	e := caretaker.NewEmbed().SetTitle("Role audit: " + role.Name).SetColor(reportColor)
	e.AddField("Elevated permissions", strings.Join(perms, "\n"))
	if counts := c.memberCounts(ctx.GuildID); counts != nil {
		e.AddField("Members", fmt.Sprintf("%d", counts[role.ID]))
	}
	return e
}

// audit returns the roles granting elevated permissions, highest role
// first.
func audit(roles []*discordgo.Role) []finding {
	var findings []finding
	for _, r := range roles {
		if perms := elevatedPermissions(r.Permissions); len(perms) > 0 {
			findings = append(findings, finding{Role: r, Permissions: perms})
		}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Role.Position > findings[j].Role.Position
	})
	return findings
}

// elevatedPermissions names the flagged permission bits set in perms.
// Administrator implies everything, so it is reported alone.
func elevatedPermissions(perms int64) []string {
	if perms&discordgo.PermissionAdministrator != 0 {
		return []string{"Administrator"}
	}
	var out []string
	for _, p := range elevated {
		if perms&p.bit != 0 {
			out = append(out, p.name)
		}
	}
	return out
}

// memberCounts counts members per role. Returns nil when the member
// list can't be fetched; the report then just omits counts.
func (c *Cog) memberCounts(guildID string) map[string]int {
	var all []*discordgo.Member
	after := ""
	for {
		members, err := c.bot.Session.GuildMembers(guildID, after, 1000)
		if err != nil {
			c.bot.LogError("Error fetching members for role audit -", err)
			return nil
		}
		all = append(all, members...)
		if len(members) < 1000 {
			break
		}
		after = members[len(members)-1].User.ID
	}
	return countRoles(all, guildID)
}

// countRoles tallies members per role ID. Member role lists never
// include the implicit @everyone role (its ID is the guild ID), so it
// gets the total member count.
func countRoles(members []*discordgo.Member, guildID string) map[string]int {
	counts := make(map[string]int)
	for _, m := range members {
		for _, roleID := range m.Roles {
			counts[roleID]++
		}
	}
	counts[guildID] = len(members)
	return counts
}
