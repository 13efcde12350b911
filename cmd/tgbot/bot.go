package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	biomass "PalmBiomass/internal/calc/biomass"
	report "PalmBiomass/internal/calc/report"
)

const helpText = `Palm Oil Biomass Calculator
/ffb <MT> - biomass from fresh fruit bunches
/area <ha> - frond and trunk biomass from plantation area
/presets - list ratio presets
/preset <name> - use a preset in this chat
/set <component> <percent> - override one ratio in this chat
/reset - back to default ratios`

// Bot keeps custom settings per chat for the life of the process.
type Bot struct {
	catalog *biomass.Catalog
	mu      sync.Mutex
	chats   map[int64]biomass.Settings
}

func NewBot(catalog *biomass.Catalog) *Bot {
	return &Bot{catalog: catalog, chats: make(map[int64]biomass.Settings)}
}

func (b *Bot) settings(chatID int64) biomass.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chats[chatID].Clone()
}

func (b *Bot) store(chatID int64, s biomass.Settings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.IsZero() {
		delete(b.chats, chatID)
		return
	}
	b.chats[chatID] = s.Clone()
}

// Reply handles one message and returns the answer text.
func (b *Bot) Reply(chatID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch cmd {
	case "/ffb":
		v, err := number(args)
		if err != nil {
			return "Usage: /ffb <MT>"
		}
		return b.mass(chatID, v)
	case "/area":
		v, err := number(args)
		if err != nil {
			return "Usage: /area <ha>"
		}
		return b.area(chatID, v)
	case "/presets":
		return b.presets(chatID)
	case "/preset":
		if len(args) != 1 {
			return "Usage: /preset <name>"
		}
		return b.update(chatID, biomass.Settings{Preset: args[0]})
	case "/set":
		if len(args) < 2 {
			return "Usage: /set <component> <percent>"
		}
		pct, err := strconv.ParseFloat(args[len(args)-1], 64)
		if err != nil {
			return "Usage: /set <component> <percent>"
		}
		name := strings.Join(args[:len(args)-1], " ")
		s := b.settings(chatID)
		overrides := map[string]float64{}
		for k, v := range s.Overrides {
			overrides[k] = v
		}
		if table, err := b.catalog.Preset(s.Preset); err == nil {
			if key, ok := table.Key(name); ok {
				for k := range overrides {
					if other, _ := table.Key(k); other == key {
						delete(overrides, k)
					}
				}
				name = key
			}
		}
		overrides[name] = pct
		return b.update(chatID, biomass.Settings{Overrides: overrides})
	case "/reset":
		b.store(chatID, biomass.Settings{})
		return fmt.Sprintf("Ratios reset to the %s preset.", b.catalog.DefaultName())
	default:
		return helpText
	}
}

func (b *Bot) mass(chatID int64, ffb float64) string {
	res, err := biomass.CalculateMass(b.catalog, b.settings(chatID), biomass.MassInput{FFBMT: ffb})
	if err != nil {
		return message(err)
	}
	if res.IsZero() {
		return "Enter an FFB amount above zero."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Biomass generated for %g MT of FFB (%s):\n", res.FFBMT, res.Preset)
	for _, q := range res.Items {
		fmt.Fprintf(&sb, "%s: %s\n", q.Name, report.FormatMT(q.MT))
	}
	fmt.Fprintf(&sb, "Total: %s", report.FormatMT(res.TotalMT))
	if res.Warning != nil {
		fmt.Fprintf(&sb, "\nNote: %s.", res.Warning.Message)
	}
	return sb.String()
}

func (b *Bot) area(chatID int64, ha float64) string {
	res, err := biomass.CalculateArea(b.catalog, b.settings(chatID), biomass.AreaInput{AreaHA: ha})
	if err != nil {
		return message(err)
	}
	if res.IsZero() {
		return "Enter a plantation area above zero."
	}
	return fmt.Sprintf("Biomass produced from plantation area of %g ha:\nOil Palm Frond (OPF): %s\nOil Palm Trunk (OPT): %s",
		res.AreaHA, report.FormatMT(res.FrondMT), report.FormatMT(res.TrunkMT))
}

func (b *Bot) presets(chatID int64) string {
	current := b.settings(chatID).Preset
	if current == "" {
		current = b.catalog.DefaultName()
	}
	var sb strings.Builder
	for _, p := range b.catalog.Presets() {
		mark := " "
		if p.Name == current {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s %s (%.1f%%): %s\n", mark, p.Name, p.Table.SumPercentage(), strings.Join(p.Table.Keys(), ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) update(chatID int64, change biomass.Settings) string {
	s := b.settings(chatID).Merge(change)
	table, _, err := b.catalog.Resolve(s)
	if err != nil {
		return message(err)
	}
	b.store(chatID, s)
	reply := fmt.Sprintf("Ratios now add up to %.2f%%.", table.SumPercentage())
	if w := table.CheckSum(); w != nil {
		reply += " (" + w.Message + ")"
	}
	return reply
}

func number(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, errors.New("one number expected")
	}
	return strconv.ParseFloat(strings.ReplaceAll(args[0], ",", ""), 64)
}

func message(err error) string {
	switch {
	case errors.Is(err, biomass.ErrInvalidInput), errors.Is(err, biomass.ErrUnknownComponent), errors.Is(err, biomass.ErrUnknownPreset):
		return "Error: " + err.Error()
	default:
		return "Calculation error."
	}
}
